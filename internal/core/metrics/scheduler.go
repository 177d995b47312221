package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

type SnapshotSampler interface {
	Collect(ctx context.Context) (domain.Snapshot, error)
}

type State int32

const (
	StateIdle State = iota
	StateSampling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	default:
		return "unknown"
	}
}

// Stats are cumulative since the scheduler was created.
type Stats struct {
	Ticks          uint64
	Delivered      uint64
	SampleFailures uint64
	SinkFailures   uint64
}

type Scheduler struct {
	interval time.Duration
	hostID   uuid.UUID
	clock    Clock
	sampler  SnapshotSampler
	sink     domain.SnapshotSink
	log      logger.Logger

	state          atomic.Int32
	ticks          atomic.Uint64
	delivered      atomic.Uint64
	sampleFailures atomic.Uint64
	sinkFailures   atomic.Uint64
}

type Option func(*Scheduler)

func WithClock(clock Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

func WithHostID(id uuid.UUID) Option {
	return func(s *Scheduler) { s.hostID = id }
}

func NewScheduler(interval time.Duration, sampler SnapshotSampler, sink domain.SnapshotSink, log logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: interval,
		clock:    SystemClock{},
		sampler:  sampler,
		sink:     sink,
		log:      log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run samples and delivers once per tick until ctx is cancelled. Ticks
// never overlap. Cancellation is observed only while idle; a tick already
// sampling runs to completion first. A failed tick is logged and skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}
	if s.sampler == nil || s.sink == nil {
		return errors.New("scheduler: sampler and sink are required")
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("metrics collector started", "interval", s.interval)

	for {
		if ctx.Err() != nil {
			s.log.Info("metrics collector stopping...")
			return nil
		}

		select {
		case <-ctx.Done():
			s.log.Info("metrics collector stopping...")
			return nil
		case <-ticker.C():
			s.tick(context.WithoutCancel(ctx))
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.state.Store(int32(StateSampling))
	defer s.state.Store(int32(StateIdle))

	n := s.ticks.Add(1)
	start := s.clock.Now()

	defer func() {
		if took := s.clock.Now().Sub(start); took > s.interval {
			s.log.Warn("tick exceeded interval, next tick delayed", "tick", n, "took", took, "interval", s.interval)
		}
	}()

	snapshot, err := s.sampler.Collect(ctx)
	if err != nil {
		s.sampleFailures.Add(1)
		s.log.Warn("sampling failed, skipping tick", "tick", n, "source", failedSource(err), "error", err)
		return
	}

	snapshot.HostID = s.hostID
	snapshot.RecordedAt = start.UTC()

	if err := s.sink.Write(ctx, snapshot); err != nil {
		s.sinkFailures.Add(1)
		s.log.Error("failed to deliver snapshot", "tick", n, "error", err)
		return
	}

	s.delivered.Add(1)
	s.log.Debug("snapshot delivered", "tick", n, "interfaces", len(snapshot.Network), "disks", len(snapshot.Disk))
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:          s.ticks.Load(),
		Delivered:      s.delivered.Load(),
		SampleFailures: s.sampleFailures.Load(),
		SinkFailures:   s.sinkFailures.Load(),
	}
}

func failedSource(err error) string {
	var srcErr *domain.SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Source
	}
	return "unknown"
}
