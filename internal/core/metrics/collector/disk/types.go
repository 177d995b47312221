package disk

import (
	"io/fs"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

const (
	diskStatsPath = "diskstats"
	// major, minor, name and eleven counters
	minFields = 14
)

type Collector struct {
	fsys fs.FS
	log  logger.Logger
}

type DiskStats = domain.DiskStats
