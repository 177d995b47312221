// Package disk
package disk

import (
	"context"
	"io/fs"
	"strings"

	"horizonx-sampler/internal/core/metrics/collector"
	"horizonx-sampler/internal/logger"
)

func NewCollector(fsys fs.FS, log logger.Logger) *Collector {
	return &Collector{fsys: fsys, log: log}
}

func (c *Collector) Collect(ctx context.Context) ([]DiskStats, error) {
	return collector.Read[[]DiskStats](c.fsys, c)
}

func (c *Collector) Name() string { return "disk" }
func (c *Collector) Path() string { return diskStatsPath }

// Parse returns one record per device row. Short rows are left out of the
// result entirely rather than zero filled.
func (c *Collector) Parse(lines []string) ([]DiskStats, error) {
	var disks []DiskStats

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < minFields {
			if len(fields) > 0 {
				c.log.Debug("skipping short device row", "source", c.Name(), "fields", len(fields))
			}
			continue
		}

		disks = append(disks, DiskStats{
			Major:           collector.ParseUint(fields, 0),
			Minor:           collector.ParseUint(fields, 1),
			DeviceName:      fields[2],
			ReadsCompleted:  collector.ParseUint(fields, 3),
			ReadsMerged:     collector.ParseUint(fields, 4),
			SectorsRead:     collector.ParseUint(fields, 5),
			ReadTime:        collector.ParseUint(fields, 6),
			WritesCompleted: collector.ParseUint(fields, 7),
			WritesMerged:    collector.ParseUint(fields, 8),
			SectorsWritten:  collector.ParseUint(fields, 9),
			WriteTime:       collector.ParseUint(fields, 10),
			IOInProgress:    collector.ParseUint(fields, 11),
			IOTime:          collector.ParseUint(fields, 12),
			IOWeightedTime:  collector.ParseUint(fields, 13),
		})
	}

	return disks, nil
}
