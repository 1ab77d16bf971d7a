package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vietddude/watermark/internal/core/domain"
	"github.com/vietddude/watermark/internal/infra/storage"
)

// Source supplies upstream records. Implementations may filter by since
// themselves; the runner re-applies ExtractNew either way.
type Source = storage.RecordRepository

// StaticSource serves a fixed in-memory record set.
type StaticSource struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewStaticSource creates a source over records.
func NewStaticSource(records ...domain.Record) *StaticSource {
	return &StaticSource{records: records}
}

// NewFixtureSource returns the demo record set.
func NewFixtureSource() *StaticSource {
	return NewStaticSource(
		domain.Record{ID: 1, Name: "Alice", UpdatedAt: time.Date(2025, 10, 25, 10, 0, 0, 0, time.UTC)},
		domain.Record{ID: 2, Name: "Bob", UpdatedAt: time.Date(2025, 10, 26, 9, 0, 0, 0, time.UTC)},
		domain.Record{ID: 3, Name: "Carol", UpdatedAt: time.Date(2025, 10, 26, 11, 0, 0, 0, time.UTC)},
	)
}

// Append adds records to the source.
func (s *StaticSource) Append(records ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// UpdatedSince returns a copy of every record.
func (s *StaticSource) UpdatedSince(ctx context.Context, since *time.Time) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// JSONFileSource reads a JSON array of records from a file on every fetch.
type JSONFileSource struct {
	path string
}

// NewJSONFileSource creates a source reading path.
func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

type jsonRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
}

// UpdatedSince decodes the file. Timestamps accept the same layouts as
// stored checkpoints.
func (s *JSONFileSource) UpdatedSince(ctx context.Context, since *time.Time) ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var raw []jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse source file %s: %w", s.path, err)
	}

	records := make([]domain.Record, 0, len(raw))
	for _, r := range raw {
		ts, err := storage.ParseCheckpoint(r.UpdatedAt)
		if err != nil || ts == nil {
			return nil, fmt.Errorf("record %d: invalid updated_at %q", r.ID, r.UpdatedAt)
		}
		records = append(records, domain.Record{ID: r.ID, Name: r.Name, UpdatedAt: *ts})
	}
	return records, nil
}
