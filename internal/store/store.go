// Package store persists back-office entities in SQLite. Every operation is
// scoped to an owner id; rows belonging to another owner behave as missing.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInUse            = errors.New("still referenced")
	ErrUnknownReference = errors.New("unknown reference")
	ErrEmailTaken       = errors.New("email already registered")
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite-backed persistence layer.
type Store struct {
	db    queryer
	pool  *sql.DB // nil when the store is bound to a transaction
	now   func() time.Time
	newID func() string
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		pool:  db,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// WithTx runs fn with a Store bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise. Calls made through the
// bound store join the same transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.withTx(ctx, func(q queryer) error {
		return fn(&Store{db: q, now: s.now, newID: s.newID})
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx queryer) error) error {
	if s.pool == nil {
		return fn(s.db)
	}
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// amountArg stores a null amount as NULL and anything else as decimal text.
func amountArg(n decimal.NullDecimal) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal.String()
}

func amountFrom(ns sql.NullString) decimal.NullDecimal {
	if !ns.Valid {
		return decimal.NullDecimal{}
	}
	return catalog.ParseAmount(ns.String)
}

func textArg(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// ensureOwned reports ErrUnknownReference when id is not one of the owner's rows.
func ensureOwned(ctx context.Context, q queryer, table, ownerID, id string) error {
	err := ensureExists(ctx, q, table, ownerID, id)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrUnknownReference, table, id)
	}
	return err
}

// ensureExists reports ErrNotFound when the owner has no row with id.
func ensureExists(ctx context.Context, q queryer, table, ownerID, id string) error {
	found, err := exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ? AND owner_id = ?)`, id, ownerID)
	if err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func affectedOrNotFound(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
