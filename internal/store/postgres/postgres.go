// Package postgres implements the ledger store on PostgreSQL via
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/dcontreras/payables/internal/store"
)

// maxTxAttempts bounds retries on serialization failures before
// surfacing ErrConcurrencyConflict.
const maxTxAttempts = 3

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL-backed ledger store. A Store either owns the
// connection pool or is bound to an open transaction (db == nil).
type Store struct {
	db  *sql.DB
	q   querier
	log zerolog.Logger
}

// Open connects to postgres and verifies the connection.
func Open(databaseURL string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, q: db, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithinTx runs fn inside a serializable transaction, retrying the
// whole read-validate-write sequence on serialization failure up to
// maxTxAttempts times. Business-rule errors returned by fn roll the
// transaction back and propagate unmodified. A nested call joins the
// transaction already in progress.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		err = fn(&Store{q: tx, log: s.log})
		if err == nil {
			err = tx.Commit()
			if err == nil {
				return nil
			}
			err = fmt.Errorf("failed to commit transaction: %w", err)
		} else {
			_ = tx.Rollback()
		}

		if !isRetryable(err) {
			return err
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}

	s.log.Warn().Err(lastErr).Msg("transaction retries exhausted")
	return store.ErrConcurrencyConflict
}

var _ store.Store = (*Store)(nil)
