package storage

import (
	"fmt"
	"strings"
	"time"
)

// Accepted checkpoint layouts, tried in order. Layouts without a zone are
// read as UTC.
var checkpointLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseCheckpoint decodes the textual form of a checkpoint. Blank input
// means no checkpoint and yields nil without error.
func ParseCheckpoint(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range checkpointLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not an ISO-8601 timestamp", ErrCheckpointParse, s)
}

// FormatCheckpoint encodes a checkpoint as ISO-8601 in UTC with full precision.
func FormatCheckpoint(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
