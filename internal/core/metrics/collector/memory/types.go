package memory

import (
	"io/fs"

	"horizonx-sampler/internal/domain"
)

const (
	memInfoPath = "meminfo"
	minFields   = 2
)

type Collector struct {
	fsys fs.FS
}

type MemInfo = domain.MemInfo
