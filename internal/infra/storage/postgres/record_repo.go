package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/watermark/internal/core/domain"
)

// DefaultRecordTable is the table read when none is configured.
const DefaultRecordTable = "source_records"

// RecordRepo reads upstream records from a table with id, name and
// updated_at columns.
type RecordRepo struct {
	db    *DB
	table string
}

// NewRecordRepo creates a record repository over table.
func NewRecordRepo(db *DB, table string) *RecordRepo {
	if table == "" {
		table = DefaultRecordTable
	}
	return &RecordRepo{db: db, table: table}
}

// UpdatedSince pushes the watermark predicate down to the database.
func (r *RecordRepo) UpdatedSince(ctx context.Context, since *time.Time) ([]domain.Record, error) {
	query := fmt.Sprintf("SELECT id, name, updated_at FROM %s", pq.QuoteIdentifier(r.table))
	var args []any
	if since != nil {
		query += " WHERE updated_at > $1"
		args = append(args, *since)
	}
	query += " ORDER BY updated_at, id"

	var records []domain.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}
