package store

import (
	"context"

	"horizonx-sampler/internal/domain"
)

// SnapshotStore keeps the most recently delivered snapshot in memory.
type SnapshotStore struct {
	Store[domain.Snapshot]
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Write(ctx context.Context, snapshot domain.Snapshot) error {
	s.Set(snapshot)
	return nil
}

func (s *SnapshotStore) Latest(ctx context.Context) (domain.Snapshot, error) {
	snapshot, ok := s.Get()
	if !ok {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	return snapshot, nil
}
