// Package metrics assembles snapshots from the procfs collectors and runs
// the collection loop that hands them to sinks.
package metrics

import (
	"context"
	"io/fs"

	"horizonx-sampler/internal/core/metrics/collector/cpu"
	"horizonx-sampler/internal/core/metrics/collector/disk"
	"horizonx-sampler/internal/core/metrics/collector/memory"
	"horizonx-sampler/internal/core/metrics/collector/network"
	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

type Sampler struct {
	cpu     *cpu.Collector
	memory  *memory.Collector
	network *network.Collector
	disk    *disk.Collector
}

// NewSampler reads every pseudo-file relative to fsys, normally
// os.DirFS of the proc root.
func NewSampler(fsys fs.FS, log logger.Logger) *Sampler {
	return &Sampler{
		cpu:     cpu.NewCollector(fsys),
		memory:  memory.NewCollector(fsys),
		network: network.NewCollector(fsys, log),
		disk:    disk.NewCollector(fsys, log),
	}
}

// Collect reads the four sources back to back. The first failure aborts
// the snapshot; the returned *domain.SourceError names the source and the
// caller decides how to report it.
func (s *Sampler) Collect(ctx context.Context) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	var err error

	if snapshot.CPU, err = s.cpu.Collect(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.Memory, err = s.memory.Collect(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.Network, err = s.network.Collect(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	if snapshot.Disk, err = s.disk.Collect(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	return snapshot, nil
}
