// Package cpu reads the aggregate row of the stat pseudo-file.
package cpu

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"horizonx-sampler/internal/core/metrics/collector"
	"horizonx-sampler/internal/domain"
)

func NewCollector(fsys fs.FS) *Collector {
	return &Collector{fsys: fsys}
}

func (c *Collector) Collect(ctx context.Context) (CPUStats, error) {
	return collector.Read[CPUStats](c.fsys, c)
}

func (c *Collector) Name() string   { return "cpu" }
func (c *Collector) Path() string   { return statPath }
func (c *Collector) LineLimit() int { return 1 }

// Parse only looks at the first line. It must be the whole-system "cpu"
// row, not a per-core "cpuN" row.
func (c *Collector) Parse(lines []string) (CPUStats, error) {
	if len(lines) == 0 {
		return CPUStats{}, fmt.Errorf("%w: empty file", domain.ErrMalformedSource)
	}

	fields := strings.Fields(lines[0])
	if len(fields) == 0 || fields[0] != aggregate {
		return CPUStats{}, fmt.Errorf("%w: first line is not the aggregate %q row", domain.ErrMalformedSource, aggregate)
	}
	if len(fields) < minFields {
		return CPUStats{}, fmt.Errorf("%w: aggregate row has %d fields, want at least %d", domain.ErrMalformedSource, len(fields), minFields)
	}

	return CPUStats{
		User:      collector.ParseUint(fields, 1),
		Nice:      collector.ParseUint(fields, 2),
		System:    collector.ParseUint(fields, 3),
		Idle:      collector.ParseUint(fields, 4),
		IOWait:    collector.ParseUint(fields, 5),
		IRQ:       collector.ParseUint(fields, 6),
		SoftIRQ:   collector.ParseUint(fields, 7),
		Steal:     collector.ParseUint(fields, 8),
		Guest:     collector.ParseUint(fields, 9),
		GuestNice: collector.ParseUint(fields, 10),
	}, nil
}
