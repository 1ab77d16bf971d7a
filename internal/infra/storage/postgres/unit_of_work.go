package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UnitOfWork bundles row inserts into a single database transaction.
// Each row runs under its own savepoint so a rejected row does not abort
// the rows around it; nothing is visible until Commit.
type UnitOfWork struct {
	db *DB
	tx *sqlx.Tx
}

// NewUnitOfWork creates a new unit of work with an active transaction.
func (db *DB) NewUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &UnitOfWork{
		db: db,
		tx: tx,
	}, nil
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("transaction already completed")
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Already committed or rolled back
	}
	err := u.tx.Rollback()
	u.tx = nil
	return err
}

// InsertRow inserts one row into table. On failure the row is rolled back
// to its savepoint and the transaction stays usable.
func (u *UnitOfWork) InsertRow(ctx context.Context, table string, columns []string, values []any) error {
	if u.tx == nil {
		return fmt.Errorf("transaction already completed")
	}

	if _, err := u.tx.ExecContext(ctx, "SAVEPOINT row_insert"); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if _, err := u.tx.ExecContext(ctx, InsertQuery(u.tx, table, columns), values...); err != nil {
		if _, rbErr := u.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT row_insert"); rbErr != nil {
			return fmt.Errorf("insert failed: %w, rollback to savepoint failed: %v", err, rbErr)
		}
		return fmt.Errorf("failed to insert row: %w", err)
	}

	if _, err := u.tx.ExecContext(ctx, "RELEASE SAVEPOINT row_insert"); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// InsertQuery builds a parameterised INSERT with quoted identifiers, using
// the binder's placeholder style.
func InsertQuery(b interface{ Rebind(string) string }, table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	return b.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		placeholders,
	))
}
