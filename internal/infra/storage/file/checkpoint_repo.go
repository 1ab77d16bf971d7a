// Package file stores a checkpoint as a single text file holding one
// ISO-8601 timestamp.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vietddude/watermark/internal/infra/storage"
)

// CheckpointRepo implements storage.CheckpointRepository on a single file.
// The name argument is ignored: one file holds one checkpoint.
type CheckpointRepo struct {
	path string
}

// NewCheckpointRepo creates a file-backed checkpoint repository.
func NewCheckpointRepo(path string) *CheckpointRepo {
	return &CheckpointRepo{path: path}
}

// Path returns the checkpoint file location.
func (r *CheckpointRepo) Path() string {
	return r.path
}

// Load reads the checkpoint. A missing or blank file means no checkpoint.
func (r *CheckpointRepo) Load(ctx context.Context, name string) (*time.Time, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	ts, err := storage.ParseCheckpoint(string(data))
	if err != nil {
		return nil, fmt.Errorf("checkpoint file %s: %w", r.path, err)
	}
	return ts, nil
}

// Save writes the checkpoint to a temp file in the same directory and
// renames it over the target, so readers see either the old or new value.
func (r *CheckpointRepo) Save(ctx context.Context, name string, ts time.Time) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(storage.FormatCheckpoint(ts)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file. Clearing a missing file is not an error.
func (r *CheckpointRepo) Clear(ctx context.Context, name string) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	return nil
}
