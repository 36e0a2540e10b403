// Package database opens the Postgres pool and provides transaction and sequence helpers.
package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// WithinTx runs fn inside a read-committed transaction, committing only when fn succeeds.
func WithinTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// NextSequence atomically increments and returns the counter stored under key.
func NextSequence(ctx context.Context, q sqlx.QueryerContext, key string) (int, error) {
	var seq int
	err := sqlx.GetContext(ctx, q, &seq, `
		INSERT INTO sequences (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = sequences.value + 1, updated_at = NOW()
		RETURNING value`, key)
	if err != nil {
		return 0, errors.Wrapf(err, "next sequence %s", key)
	}
	return seq, nil
}

// IsUniqueViolation reports a Postgres unique constraint failure (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
