package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vietddude/watermark/internal/metrics"
)

var (
	// ErrTransientConnection marks a failure expected to clear after a wait,
	// such as the server still starting up.
	ErrTransientConnection = errors.New("transient connection failure")

	// ErrConnectionExhausted is returned when every connection attempt failed transiently.
	ErrConnectionExhausted = errors.New("connection attempts exhausted")
)

// RetryPolicy bounds the connector: at most MaxRetries attempts, with a
// fixed Delay between them.
type RetryPolicy struct {
	MaxRetries int           `yaml:"max_retries"`
	Delay      time.Duration `yaml:"delay"`
}

// DefaultRetryPolicy applies when the config sets no policy.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 5,
	Delay:      3 * time.Second,
}

// DialFunc makes a single connection attempt.
type DialFunc func(ctx context.Context) (*DB, error)

// Connector obtains a connection, retrying transient failures.
type Connector struct {
	dial   DialFunc
	policy RetryPolicy
	log    *slog.Logger
}

// NewConnector creates a connector that dials cfg.
func NewConnector(cfg Config, policy RetryPolicy) *Connector {
	return NewConnectorWithDialer(func(ctx context.Context) (*DB, error) {
		return NewDB(ctx, cfg)
	}, policy)
}

// NewConnectorWithDialer creates a connector around a custom dial function.
func NewConnectorWithDialer(dial DialFunc, policy RetryPolicy) *Connector {
	return &Connector{
		dial:   dial,
		policy: policy,
		log:    slog.Default(),
	}
}

// WithLogger sets the logger used to report attempts.
func (c *Connector) WithLogger(log *slog.Logger) *Connector {
	c.log = log
	return c
}

// Connect returns an open connection owned by the caller. Non-transient
// failures are returned immediately; transient ones are retried until the
// attempt budget runs out, which yields ErrConnectionExhausted.
func (c *Connector) Connect(ctx context.Context) (*DB, error) {
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxRetries; attempt++ {
		db, err := c.dial(ctx)
		if err == nil {
			metrics.ConnectAttempts.WithLabelValues("success").Inc()
			c.log.Info("Connected to PostgreSQL", "attempt", attempt)
			return db, nil
		}

		if !IsTransient(err) {
			metrics.ConnectAttempts.WithLabelValues("fatal").Inc()
			c.log.Error("PostgreSQL connection failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		metrics.ConnectAttempts.WithLabelValues("transient").Inc()
		lastErr = err
		remaining := c.policy.MaxRetries - attempt
		c.log.Warn("PostgreSQL not ready, retrying",
			"attempt", attempt,
			"remaining", remaining,
			"delay", c.policy.Delay,
			"error", err,
		)

		if remaining == 0 {
			break
		}
		if err := wait(ctx, c.policy.Delay); err != nil {
			return nil, err
		}
	}

	c.log.Error("Could not connect to PostgreSQL", "attempts", c.policy.MaxRetries, "error", lastErr)
	if lastErr == nil {
		return nil, fmt.Errorf("%w: no attempts allowed", ErrConnectionExhausted)
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrConnectionExhausted, c.policy.MaxRetries, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether err is a connection failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransientConnection) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	// Server-reported errors are classified by SQLSTATE
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isTransientCode(string(pqErr.Code))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// isTransientCode: class 08 connection exceptions, cannot_connect_now
// (server starting up) and too_many_connections.
func isTransientCode(code string) bool {
	return strings.HasPrefix(code, "08") || code == "57P03" || code == "53300"
}
