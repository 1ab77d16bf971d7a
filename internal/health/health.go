// Package health reports extractor status over HTTP.
package health

import "time"

// SystemStatus represents the overall health state of the extractor.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ExtractorHealth describes the most recent extraction cycle.
type ExtractorHealth struct {
	Checkpoint  string       `json:"checkpoint"`
	Status      SystemStatus `json:"status"`
	Mode        string       `json:"mode"`
	LastRunID   string       `json:"last_run_id,omitempty"`
	LastRunAt   *time.Time   `json:"last_run_at,omitempty"`
	LastOutcome string       `json:"last_outcome,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	Watermark   *time.Time   `json:"watermark,omitempty"`
	Extracted   int          `json:"extracted"`
}
