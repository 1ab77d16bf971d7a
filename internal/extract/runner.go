package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/watermark/internal/core/checkpoint"
	"github.com/vietddude/watermark/internal/core/domain"
	"github.com/vietddude/watermark/internal/metrics"
)

// ErrCycleInProgress is returned when RunOnce is called while a cycle is running.
var ErrCycleInProgress = errors.New("extraction cycle already running")

// Mode decides what the runner does with a failed cycle.
type Mode string

const (
	// ModeContinue logs the failure and keeps the loop alive.
	ModeContinue Mode = "continue"
	// ModePropagate returns the failure to the caller.
	ModePropagate Mode = "propagate"
)

// ParseMode validates a mode name. Empty selects ModeContinue.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeContinue:
		return ModeContinue, nil
	case ModePropagate:
		return ModePropagate, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeContinue, ModePropagate)
	}
}

// Sink receives the records of a cycle before the checkpoint advances.
// A sink error fails the cycle and leaves the checkpoint untouched.
type Sink func(ctx context.Context, records []domain.Record) error

// LogSink logs each extracted record.
func LogSink(log *slog.Logger) Sink {
	return func(ctx context.Context, records []domain.Record) error {
		log.Info("Processing new records", "count", len(records))
		for _, r := range records {
			log.Info("Record",
				"id", r.ID,
				"name", r.Name,
				"updated_at", r.UpdatedAt.Format(time.RFC3339Nano),
			)
		}
		return nil
	}
}

// Config wires a Runner.
type Config struct {
	Source      Source
	Checkpoints checkpoint.Manager
	Mode        Mode
	Sink        Sink
	Logger      *slog.Logger
}

// Result describes one extraction cycle.
type Result struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Previous   *time.Time      // checkpoint at the start of the cycle
	Records    []domain.Record // records past Previous
	Checkpoint *time.Time      // checkpoint at the end of the cycle
	Advanced   bool
	Err        error
}

// Outcome classifies the cycle for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Advanced:
		return "advanced"
	default:
		return "empty"
	}
}

// Runner executes extraction cycles one at a time.
type Runner struct {
	cfg     Config
	log     *slog.Logger
	running atomic.Bool
	last    atomic.Pointer[Result]
}

// NewRunner creates a runner. A nil Sink logs records; a nil Logger uses slog.Default.
func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeContinue
	}
	if cfg.Sink == nil {
		cfg.Sink = LogSink(cfg.Logger)
	}
	return &Runner{
		cfg: cfg,
		log: cfg.Logger.With("checkpoint", cfg.Checkpoints.Name()),
	}
}

// Mode returns the failure mode.
func (r *Runner) Mode() Mode {
	return r.cfg.Mode
}

// LastResult returns the most recent cycle result, if any.
func (r *Runner) LastResult() (Result, bool) {
	res := r.last.Load()
	if res == nil {
		return Result{}, false
	}
	return *res, true
}

// RunOnce performs a single cycle. The Result is always populated; the
// returned error is non-nil only in ModePropagate (or on ErrCycleInProgress).
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Result{Err: ErrCycleInProgress}, ErrCycleInProgress
	}
	defer r.running.Store(false)

	res := r.cycle(ctx)
	res.Duration = time.Since(res.StartedAt)
	r.record(res)

	if res.Err != nil {
		if r.cfg.Mode == ModePropagate {
			return res, res.Err
		}
		r.log.Error("Extraction failed", "run_id", res.RunID, "error", res.Err)
	}
	return res, nil
}

// Run repeats cycles every interval until ctx is cancelled. In
// ModePropagate the first failed cycle stops the loop and is returned.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) cycle(ctx context.Context) Result {
	res := Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := r.log.With("run_id", res.RunID)

	prev, err := r.cfg.Checkpoints.Load(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Previous = prev
	res.Checkpoint = prev

	records, err := r.cfg.Source.UpdatedSince(ctx, prev)
	if err != nil {
		res.Err = fmt.Errorf("failed to fetch records: %w", err)
		return res
	}

	res.Records = ExtractNew(records, prev)
	log.Info("Extracted new/updated records", "count", len(res.Records))

	latest, ok := domain.MaxUpdatedAt(res.Records)
	if !ok {
		log.Info("No new data to extract")
		return res
	}

	if err := r.cfg.Sink(ctx, res.Records); err != nil {
		res.Err = fmt.Errorf("failed to process records: %w", err)
		return res
	}

	advanced, err := r.cfg.Checkpoints.Advance(ctx, latest)
	if err != nil {
		res.Err = err
		return res
	}
	res.Checkpoint = &latest
	res.Advanced = advanced
	return res
}

func (r *Runner) record(res Result) {
	name := r.cfg.Checkpoints.Name()
	metrics.CyclesTotal.WithLabelValues(name, res.Outcome()).Inc()
	if res.Err == nil {
		metrics.RecordsExtracted.WithLabelValues(name).Add(float64(len(res.Records)))
	}
	metrics.CycleDuration.WithLabelValues(name).Observe(res.Duration.Seconds())
	r.last.Store(&res)
}
