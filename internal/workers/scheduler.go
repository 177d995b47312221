// Package workers runs periodic housekeeping jobs.
package workers

import (
	"context"
	"time"

	"horizonx-sampler/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	log logger.Logger
}

func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// RunByDuration runs worker every dur until ctx is done. It blocks.
func (s *Scheduler) RunByDuration(ctx context.Context, dur time.Duration, worker Worker) {
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	s.log.Info("worker: started", "name", worker.Name(), "every", dur)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()

			err := worker.Run(ctx)
			if err != nil {
				s.log.Error("worker failed", "name", worker.Name(), "error", err)
			}

			s.log.Debug("worker finished", "name", worker.Name(), "time", time.Since(start))
		}
	}
}
