package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
)

// querier is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repositories are written against this interface so the same code
// serves both immediate writes and batched units of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)

// writer returns the execution target for a single-statement mutation.
// With AutoSaveChanges enabled the statement goes straight to the database;
// otherwise it joins the shared transaction backing the current unit of
// work, opening it lazily on first use.
func (s *UserStore) writer(ctx context.Context) (querier, error) {
	if s.AutoSaveChanges {
		return s.db, nil
	}

	return s.batchTx(ctx)
}

// reader returns the execution target for lookups. Reads join the open
// batched transaction when there is one, so a caller observes its own
// pending writes, but a lookup never opens a transaction on its own.
func (s *UserStore) reader() querier {
	if s.tx != nil {
		return s.tx
	}

	return s.db
}

// batchTx returns the shared transaction of the current unit of work,
// beginning it on first use. Only called with AutoSaveChanges disabled.
func (s *UserStore) batchTx(ctx context.Context) (*sql.Tx, error) {
	log := logger.FromContext(ctx)

	if s.tx != nil {
		return s.tx, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "UserStore.batchTx").
			Msg("failed to begin batched transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	s.tx = tx
	return tx, nil
}

// unit returns the execution target for a multi-statement operation together
// with its completion callbacks.
//
// With AutoSaveChanges enabled a dedicated transaction is opened; commit
// finalises it and rollback discards it. With AutoSaveChanges disabled the
// shared batched transaction is reused and both callbacks are no-ops,
// because SaveChanges and Rollback own its lifetime.
func (s *UserStore) unit(ctx context.Context) (q querier, commit func() error, rollback func(), err error) {
	log := logger.FromContext(ctx)

	if !s.AutoSaveChanges {
		tx, txErr := s.batchTx(ctx)
		if txErr != nil {
			return nil, nil, nil, txErr
		}
		return tx, func() error { return nil }, func() {}, nil
	}

	tx, txErr := s.db.BeginTx(ctx, nil)
	if txErr != nil {
		log.Err(txErr).
			Str("func", "UserStore.unit").
			Msg("failed to begin transaction")
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, txErr)
	}

	commit = func() error {
		if commitErr := tx.Commit(); commitErr != nil {
			log.Err(commitErr).
				Str("func", "UserStore.unit").
				Msg("failed to commit transaction")
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
		}
		return nil
	}
	rollback = func() { _ = tx.Rollback() }

	return tx, commit, rollback, nil
}
