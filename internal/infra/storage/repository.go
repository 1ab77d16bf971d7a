package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/watermark/internal/core/domain"
)

var (
	// ErrCheckpointParse is returned when a stored checkpoint is not a valid timestamp.
	ErrCheckpointParse = errors.New("checkpoint parse error")
)

// CheckpointRepository persists extraction watermarks by name.
type CheckpointRepository interface {
	// Load returns the stored checkpoint, or nil if none was ever written.
	Load(ctx context.Context, name string) (*time.Time, error)

	// Save replaces the stored checkpoint.
	Save(ctx context.Context, name string, ts time.Time) error

	// Clear removes the checkpoint so the next load reports none.
	Clear(ctx context.Context, name string) error
}

// RecordRepository reads upstream records updated after a watermark.
type RecordRepository interface {
	// UpdatedSince returns records with updated_at > since, or all when since is nil.
	UpdatedSince(ctx context.Context, since *time.Time) ([]domain.Record, error)
}

// RowWriter inserts generic tabular rows into a named table.
type RowWriter interface {
	InsertRow(ctx context.Context, table string, columns []string, values []any) error
}
