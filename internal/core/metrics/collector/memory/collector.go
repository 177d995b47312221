// Package memory
package memory

import (
	"context"
	"io/fs"
	"strings"

	"horizonx-sampler/internal/core/metrics/collector"
)

func NewCollector(fsys fs.FS) *Collector {
	return &Collector{fsys: fsys}
}

func (c *Collector) Collect(ctx context.Context) (MemInfo, error) {
	return collector.Read[MemInfo](c.fsys, c)
}

func (c *Collector) Name() string { return "memory" }
func (c *Collector) Path() string { return memInfoPath }

// Parse matches labels by exact token. Unknown labels and short lines are
// skipped; labels that never appear stay zero.
func (c *Collector) Parse(lines []string) (MemInfo, error) {
	var info MemInfo

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			info.MemTotal = collector.ParseUint(fields, 1)
		case "MemFree:":
			info.MemFree = collector.ParseUint(fields, 1)
		case "MemAvailable:":
			info.MemAvailable = collector.ParseUint(fields, 1)
		case "Buffers:":
			info.Buffers = collector.ParseUint(fields, 1)
		case "Cached:":
			info.Cached = collector.ParseUint(fields, 1)
		case "SwapTotal:":
			info.SwapTotal = collector.ParseUint(fields, 1)
		case "SwapFree:":
			info.SwapFree = collector.ParseUint(fields, 1)
		}
	}

	return info, nil
}
