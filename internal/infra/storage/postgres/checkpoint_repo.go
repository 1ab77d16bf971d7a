package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CheckpointRepo implements storage.CheckpointRepository using PostgreSQL.
type CheckpointRepo struct {
	db *DB
}

// NewCheckpointRepo creates a new PostgreSQL checkpoint repository.
func NewCheckpointRepo(db *DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

// Load retrieves a checkpoint by name.
func (r *CheckpointRepo) Load(ctx context.Context, name string) (*time.Time, error) {
	var ts time.Time
	err := r.db.GetContext(ctx, &ts, "SELECT checkpoint FROM checkpoints WHERE name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return &ts, nil
}

// Save upserts a checkpoint.
func (r *CheckpointRepo) Save(ctx context.Context, name string, ts time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkpoints (name, checkpoint, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET checkpoint = EXCLUDED.checkpoint, updated_at = EXCLUDED.updated_at`,
		name, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Clear deletes a checkpoint.
func (r *CheckpointRepo) Clear(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE name = $1", name); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}
