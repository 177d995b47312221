package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

// Fanout delivers each snapshot to every registered sink in order. All
// sinks are attempted; failures are joined into one error.
type Fanout struct {
	sinks []namedSink
	log   logger.Logger
}

type namedSink struct {
	name string
	sink domain.SnapshotSink
}

func NewFanout(log logger.Logger) *Fanout {
	return &Fanout{log: log}
}

func (f *Fanout) Add(name string, sink domain.SnapshotSink) {
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Write(ctx context.Context, snapshot domain.Snapshot) error {
	var errs []error

	for _, s := range f.sinks {
		if err := s.sink.Write(ctx, snapshot); err != nil {
			f.log.Warn("sink write failed", "sink", s.name, "error", err)
			errs = append(errs, fmt.Errorf("sink %s: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}

// Close closes every sink that implements io.Closer, in reverse order.
func (f *Fanout) Close() error {
	var errs []error

	for i := len(f.sinks) - 1; i >= 0; i-- {
		c, ok := f.sinks[i].sink.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink %s: %w", f.sinks[i].name, err))
		}
	}

	return errors.Join(errs...)
}
