package cpu

import (
	"io/fs"

	"horizonx-sampler/internal/domain"
)

const (
	statPath  = "stat"
	aggregate = "cpu"
	// label plus ten counters
	minFields = 11
)

type Collector struct {
	fsys fs.FS
}

type CPUStats = domain.CPUStats
