package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/watermark/internal/core/domain"
	"github.com/vietddude/watermark/internal/extract"
)

// =============================================================================
// Mocks
// =============================================================================

type stubResults struct {
	res *extract.Result
}

func (s *stubResults) LastResult() (extract.Result, bool) {
	if s.res == nil {
		return extract.Result{}, false
	}
	return *s.res, true
}

func (s *stubResults) Mode() extract.Mode { return extract.ModeContinue }

// =============================================================================
// Tests
// =============================================================================

func TestMonitorNoCycleYet(t *testing.T) {
	m := NewMonitor("orders", &stubResults{}, 0)
	if got := m.Check().Status; got != StatusDegraded {
		t.Errorf("status = %s, want degraded", got)
	}
}

func TestMonitorStatus(t *testing.T) {
	now := time.Date(2025, 10, 26, 12, 0, 0, 0, time.UTC)
	wm := now.Add(-time.Hour)

	tests := []struct {
		name   string
		res    extract.Result
		expect SystemStatus
	}{
		{
			"successful cycle",
			extract.Result{RunID: "a", StartedAt: now.Add(-time.Second), Checkpoint: &wm, Advanced: true,
				Records: []domain.Record{{ID: 1}}},
			StatusHealthy,
		},
		{
			"failed cycle",
			extract.Result{RunID: "b", StartedAt: now.Add(-time.Second), Err: errors.New("source down")},
			StatusCritical,
		},
		{
			"stale cycle",
			extract.Result{RunID: "c", StartedAt: now.Add(-2 * time.Hour)},
			StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.res
			m := NewMonitor("orders", &stubResults{res: &res}, time.Hour)
			m.now = func() time.Time { return now }

			report := m.Check()
			if report.Status != tt.expect {
				t.Errorf("status = %s, want %s", report.Status, tt.expect)
			}
			if report.LastRunID != tt.res.RunID {
				t.Errorf("run id = %q, want %q", report.LastRunID, tt.res.RunID)
			}
		})
	}
}

func TestServerHealthEndpoint(t *testing.T) {
	res := extract.Result{RunID: "x", StartedAt: time.Now(), Err: errors.New("boom")}
	srv := NewServer(NewMonitor("orders", &stubResults{res: &res}, 0), 0)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != string(StatusCritical) {
		t.Errorf("status = %q", body["status"])
	}
}

func TestServerDetailedEndpoint(t *testing.T) {
	wm := time.Date(2025, 10, 26, 11, 0, 0, 0, time.UTC)
	res := extract.Result{RunID: "x", StartedAt: time.Now(), Checkpoint: &wm, Advanced: true}
	srv := NewServer(NewMonitor("orders", &stubResults{res: &res}, 0), 0)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	var report ExtractorHealth
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Checkpoint != "orders" || report.LastOutcome != "advanced" {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Watermark == nil || !report.Watermark.Equal(wm) {
		t.Errorf("watermark = %v, want %v", report.Watermark, wm)
	}
}
