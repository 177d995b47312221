// Package network
package network

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"horizonx-sampler/internal/core/metrics/collector"
	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

func NewCollector(fsys fs.FS, log logger.Logger) *Collector {
	return &Collector{fsys: fsys, log: log}
}

func (c *Collector) Collect(ctx context.Context) ([]NetworkInterface, error) {
	return collector.Read[[]NetworkInterface](c.fsys, c)
}

func (c *Collector) Name() string { return "network" }
func (c *Collector) Path() string { return devPath }

// Parse drops the two header lines and returns one record per interface
// row in file order. Rows with too few columns are skipped.
//
// Columns 1-8 are receive (bytes packets errs drop fifo frame compressed
// multicast), columns 9-12 are transmit bytes packets errs drop.
func (c *Collector) Parse(lines []string) ([]NetworkInterface, error) {
	if len(lines) < headerLines {
		return nil, fmt.Errorf("%w: want %d header lines, got %d lines", domain.ErrMalformedSource, headerLines, len(lines))
	}

	var interfaces []NetworkInterface

	for _, line := range lines[headerLines:] {
		fields := strings.Fields(line)
		if len(fields) < minFields {
			if strings.TrimSpace(line) != "" {
				c.log.Debug("skipping short interface row", "source", c.Name(), "fields", len(fields))
			}
			continue
		}

		interfaces = append(interfaces, NetworkInterface{
			Name:              strings.TrimSuffix(fields[0], ":"),
			ReceiveBytes:      collector.ParseUint(fields, 1),
			ReceivePackets:    collector.ParseUint(fields, 2),
			ReceiveErrors:     collector.ParseUint(fields, 3),
			ReceiveDropped:    collector.ParseUint(fields, 4),
			FIFOErrors:        collector.ParseUint(fields, 5),
			FrameErrors:       collector.ParseUint(fields, 6),
			CompressedPackets: collector.ParseUint(fields, 7),
			MulticastPackets:  collector.ParseUint(fields, 8),
			TransmitBytes:     collector.ParseUint(fields, 9),
			TransmitPackets:   collector.ParseUint(fields, 10),
			TransmitErrors:    collector.ParseUint(fields, 11),
			TransmitDropped:   collector.ParseUint(fields, 12),
		})
	}

	return interfaces, nil
}
