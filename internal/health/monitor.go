package health

import (
	"time"

	"github.com/vietddude/watermark/internal/extract"
)

// ResultSource exposes the latest cycle result.
type ResultSource interface {
	LastResult() (extract.Result, bool)
	Mode() extract.Mode
}

// Monitor derives extractor health from the latest cycle.
type Monitor struct {
	name       string
	source     ResultSource
	staleAfter time.Duration
	now        func() time.Time
}

// NewMonitor creates a monitor. A cycle older than staleAfter is reported
// as degraded; zero disables the staleness check.
func NewMonitor(name string, source ResultSource, staleAfter time.Duration) *Monitor {
	return &Monitor{
		name:       name,
		source:     source,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Check builds the current health report.
func (m *Monitor) Check() ExtractorHealth {
	h := ExtractorHealth{
		Checkpoint: m.name,
		Mode:       string(m.source.Mode()),
		Status:     StatusDegraded, // no cycle has run yet
	}

	res, ok := m.source.LastResult()
	if !ok {
		return h
	}

	startedAt := res.StartedAt
	h.LastRunID = res.RunID
	h.LastRunAt = &startedAt
	h.LastOutcome = res.Outcome()
	h.Watermark = res.Checkpoint
	h.Extracted = len(res.Records)

	switch {
	case res.Err != nil:
		h.Status = StatusCritical
		h.LastError = res.Err.Error()
	case m.staleAfter > 0 && m.now().Sub(res.StartedAt) > m.staleAfter:
		h.Status = StatusDegraded
	default:
		h.Status = StatusHealthy
	}
	return h
}
