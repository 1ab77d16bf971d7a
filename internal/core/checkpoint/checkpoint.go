// Package checkpoint tracks the extraction watermark for an incremental extractor.
//
// # Purpose
//
// The checkpoint is the timestamp below which every upstream record is known
// to have been processed. An extraction cycle reads it, pulls only records
// updated strictly after it, and advances it to the newest update it saw.
// Re-running a cycle with no new upstream data changes nothing.
//
// # Key Features
//
// Monotonic - Advance never moves the watermark backwards. An older value
// returns ErrCheckpointRegression; an equal value is a no-op.
//
// Absent is meaningful - Load returns nil when nothing was ever stored,
// which the extractor treats as "extract everything".
//
// Operator override - Reset and Clear bypass the monotonic check for manual
// repair (re-extract from an earlier point).
//
// # Quick Start
//
//	manager := checkpoint.NewManager(repo, "orders")
//
//	last, _ := manager.Load(ctx)                 // nil on first run
//	manager.Advance(ctx, latestUpdatedAt)        // ✓ moves forward
//	manager.Advance(ctx, latestUpdatedAt.Add(-1)) // ✗ ErrCheckpointRegression
//
// # Concurrency
//
// A Manager serialises its own calls. Two processes sharing one backing
// store are last-writer-wins.
package checkpoint

import (
	"github.com/vietddude/watermark/internal/core/domain"
	"github.com/vietddude/watermark/internal/infra/storage"
)

// NewManager creates a checkpoint manager for the named watermark.
func NewManager(repo storage.CheckpointRepository, name string) *DefaultManager {
	if name == "" {
		name = domain.DefaultCheckpointName
	}
	return &DefaultManager{
		repo: repo,
		name: name,
	}
}
