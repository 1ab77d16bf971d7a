package memory

import (
	"context"
	"sync"
	"time"
)

type MemoryStorage struct {
	checkpoints map[string]time.Time
	mu          sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		checkpoints: make(map[string]time.Time),
	}
}

// -----------------------------------------------------------------------------
// Checkpoint Repository
// -----------------------------------------------------------------------------

type CheckpointRepo struct {
	store *MemoryStorage
}

func NewCheckpointRepo(store *MemoryStorage) *CheckpointRepo {
	return &CheckpointRepo{store: store}
}

func (r *CheckpointRepo) Load(ctx context.Context, name string) (*time.Time, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ts, ok := r.store.checkpoints[name]
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

func (r *CheckpointRepo) Save(ctx context.Context, name string, ts time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.checkpoints[name] = ts
	return nil
}

func (r *CheckpointRepo) Clear(ctx context.Context, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.checkpoints, name)
	return nil
}
