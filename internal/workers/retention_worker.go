package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horizonx-sampler/internal/logger"
)

// Pruner deletes snapshots recorded before cutoff and reports how many
// went away.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type RetentionWorker struct {
	retention time.Duration
	pruners   map[string]Pruner
	now       func() time.Time
	log       logger.Logger
}

func NewRetentionWorker(retention time.Duration, pruners map[string]Pruner, log logger.Logger) *RetentionWorker {
	return &RetentionWorker{
		retention: retention,
		pruners:   pruners,
		now:       time.Now,
		log:       log,
	}
}

func (w *RetentionWorker) Name() string {
	return "snapshot_retention"
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	cutoff := w.now().UTC().Add(-w.retention)

	var errs []error
	for name, p := range w.pruners {
		n, err := p.DeleteBefore(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if n > 0 {
			w.log.Info("old snapshots pruned", "store", name, "deleted", n, "cutoff", cutoff)
		}
	}

	return errors.Join(errs...)
}
