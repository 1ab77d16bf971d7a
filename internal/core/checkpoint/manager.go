package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/watermark/internal/infra/storage"
	"github.com/vietddude/watermark/internal/metrics"
)

var (
	// ErrCheckpointRegression is returned when Advance is asked to move the watermark backwards.
	ErrCheckpointRegression = errors.New("checkpoint regression")
)

// Manager handles checkpoint operations with monotonic enforcement.
type Manager interface {
	// Name identifies the watermark within its store.
	Name() string

	// Load retrieves the current checkpoint, nil if none exists.
	Load(ctx context.Context) (*time.Time, error)

	// Advance moves the checkpoint forward (validates monotonic).
	Advance(ctx context.Context, ts time.Time) (bool, error)

	// Reset overwrites the checkpoint unconditionally.
	Reset(ctx context.Context, ts time.Time) error

	// Clear removes the checkpoint so the next cycle extracts everything.
	Clear(ctx context.Context) error
}

// DefaultManager implements Manager on top of a CheckpointRepository.
type DefaultManager struct {
	repo storage.CheckpointRepository
	name string
	mu   sync.Mutex
}

// Name returns the checkpoint name.
func (m *DefaultManager) Name() string {
	return m.name
}

// Load retrieves the current checkpoint.
func (m *DefaultManager) Load(ctx context.Context) (*time.Time, error) {
	ts, err := m.repo.Load(ctx, m.name)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if ts == nil {
		slog.Info("No previous checkpoint found, full extraction will be performed", "name", m.name)
		return nil, nil
	}
	slog.Info("Loaded last checkpoint", "name", m.name, "checkpoint", ts.Format(time.RFC3339Nano))
	metrics.CheckpointTimestamp.WithLabelValues(m.name).Set(float64(ts.Unix()))
	return ts, nil
}

// Advance persists ts if it is newer than the stored checkpoint. It reports
// whether the stored value changed.
func (m *DefaultManager) Advance(ctx context.Context, ts time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.repo.Load(ctx, m.name)
	if err != nil {
		return false, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if current != nil {
		if ts.Before(*current) {
			return false, fmt.Errorf(
				"%w: stored %s, got %s",
				ErrCheckpointRegression,
				current.Format(time.RFC3339Nano),
				ts.Format(time.RFC3339Nano),
			)
		}
		if ts.Equal(*current) {
			return false, nil
		}
	}

	if err := m.save(ctx, ts); err != nil {
		return false, err
	}
	return true, nil
}

// Reset overwrites the checkpoint, allowing it to move backwards.
func (m *DefaultManager) Reset(ctx context.Context, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slog.Warn("Resetting checkpoint", "name", m.name, "checkpoint", ts.Format(time.RFC3339Nano))
	return m.save(ctx, ts)
}

// Clear removes the checkpoint.
func (m *DefaultManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Clear(ctx, m.name); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	slog.Warn("Cleared checkpoint", "name", m.name)
	metrics.CheckpointTimestamp.DeleteLabelValues(m.name)
	return nil
}

func (m *DefaultManager) save(ctx context.Context, ts time.Time) error {
	if err := m.repo.Save(ctx, m.name, ts); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	slog.Info("Saved checkpoint", "name", m.name, "checkpoint", ts.Format(time.RFC3339Nano))
	metrics.CheckpointTimestamp.WithLabelValues(m.name).Set(float64(ts.Unix()))
	return nil
}
