// Package load inserts CSV rows into a Postgres table, one row at a time,
// inside a single transaction. A rejected row is logged and skipped.
package load

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vietddude/watermark/internal/infra/storage"
	"github.com/vietddude/watermark/internal/metrics"
)

// Tx is a transactional row writer.
type Tx interface {
	storage.RowWriter
	Commit() error
	Rollback() error
}

// BeginFunc opens a transaction.
type BeginFunc func(ctx context.Context) (Tx, error)

// Config controls how a CSV file maps onto a table.
type Config struct {
	Table string
	// LowercaseColumns maps headers like "Date" onto unquoted-style
	// lowercase column names.
	LowercaseColumns bool
}

// Result summarises a load.
type Result struct {
	Read     int
	Inserted int
	Failed   int
}

// Loader copies CSV rows into a table.
type Loader struct {
	cfg   Config
	begin BeginFunc
	log   *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(cfg Config, begin BeginFunc) *Loader {
	return &Loader{
		cfg:   cfg,
		begin: begin,
		log:   slog.Default().With("table", cfg.Table),
	}
}

// LoadFile reads path and inserts its rows.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening csv %s: %w", path, err)
	}
	defer f.Close()

	l.log.Info("Reading data from CSV", "path", path)
	return l.Load(ctx, f)
}

// Load inserts every row read from r. The header row names the columns.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Result, error) {
	columns, rows, err := l.read(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Read: len(rows)}
	l.log.Info("Retrieved records from CSV", "count", res.Read)
	if res.Read == 0 {
		l.log.Warn("CSV file is empty, nothing to insert")
		return res, nil
	}

	tx, err := l.begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin load: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			_ = tx.Rollback()
			return res, err
		}
		if err := tx.InsertRow(ctx, l.cfg.Table, columns, row); err != nil {
			res.Failed++
			l.log.Error("Error inserting row", "row", i+1, "values", row, "error", err)
			continue
		}
		res.Inserted++
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return Result{Read: res.Read, Failed: res.Read}, fmt.Errorf("failed to commit load: %w", err)
	}

	metrics.RowsLoaded.WithLabelValues(l.cfg.Table).Add(float64(res.Inserted))
	metrics.RowsFailed.WithLabelValues(l.cfg.Table).Add(float64(res.Failed))
	l.log.Info("Inserted rows", "inserted", res.Inserted, "failed", res.Failed)
	return res, nil
}

func (l *Loader) read(r io.Reader) ([]string, [][]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv headers: %w", err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if l.cfg.LowercaseColumns {
			h = strings.ToLower(h)
		}
		columns[i] = h
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading csv row %d: %w", len(rows)+1, err)
		}

		values := make([]any, len(record))
		for i, v := range record {
			if v == "" {
				values[i] = nil // empty cell loads as NULL
				continue
			}
			values[i] = v
		}
		rows = append(rows, values)
	}
	return columns, rows, nil
}
