// Package pgsql implements the ledger store on PostgreSQL using pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)
)

// Store is the PostgreSQL LedgerStore. Outside WithTx each call runs on its own
// pooled connection; inside WithTx every repository shares the transaction.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// NewStore creates a store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Clients() portsrepo.ClientRepository           { return clientRepo{q: s.q} }
func (s *Store) Groups() portsrepo.GroupRepository             { return groupRepo{q: s.q} }
func (s *Store) Sessions() portsrepo.SessionRepository         { return sessionRepo{q: s.q} }
func (s *Store) Transactions() portsrepo.TransactionRepository { return transactionRepo{q: s.q} }
func (s *Store) Expenses() portsrepo.ExpenseRepository         { return expenseRepo{q: s.q} }

// WithTx runs fn inside a database transaction. Calling WithTx on the store
// handed to fn reuses the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerStore) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx) // No-op once committed
	}()

	if err := fn(&Store{pool: s.pool, q: tx, inTx: true}); err != nil {
		return err
	}
	return s.commit(ctx, tx)
}

func (s *Store) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

func (s *Store) commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrNotFound)
}

// mapWriteError translates constraint violations into application errors.
func mapWriteError(err error, entity, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == chargeOncePerClientIndex {
				return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrAlreadyCharged)
			}
			return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s %s references a missing row: %w", entity, id, apperrors.ErrNotFound)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s %s violates %s", apperrors.ErrValidation, entity, id, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to write %s %s: %w", entity, id, err)
}
