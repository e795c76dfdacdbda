package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/practice_ledger_app/internal/utils/pagination"
)

// chargeOncePerClientIndex is the partial unique index that stops a session
// from charging the same client twice.
const chargeOncePerClientIndex = "transactions_charge_once_idx"

type transactionRepo struct {
	q querier
}

var _ portsrepo.TransactionRepository = transactionRepo{}

const (
	insertTransactionQuery = `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	oldestFirst = ` ORDER BY occurred_at, created_at, transaction_id`
)

func (r transactionRepo) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("transaction", transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return &t, nil
}

func (r transactionRepo) list(ctx context.Context, where string, args ...any) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + where + oldestFirst + `;`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txns, err := collect(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return txns, nil
}

func (r transactionRepo) FindTransactionsBySessionID(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	return r.list(ctx, `WHERE related_session_id = $1`, sessionID)
}

func (r transactionRepo) FindTransactionsByClientID(ctx context.Context, clientID string) ([]domain.Transaction, error) {
	return r.list(ctx, `WHERE client_id = $1`, clientID)
}

func (r transactionRepo) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return r.list(ctx, ``)
}

// ListTransactionsByClientID retrieves a page of a client's transactions, newest first,
// using (occurred_at, transaction_id) as the keyset.
func (r transactionRepo) ListTransactionsByClientID(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.ClampLimit(limit)
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE client_id = $1`
	args := []any{clientID}

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (occurred_at, transaction_id) < ($2, $3)`
		args = append(args, cursor.At, cursor.ID)
	}
	query += ` ORDER BY occurred_at DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for client %s: %w", clientID, err)
	}
	txns, err := collect(rows, scanTransaction)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan transactions for client %s: %w", clientID, err)
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeToken(last.OccurredAt, last.TransactionID)
		next = &token
	}
	return txns, next, nil
}

// SaveTransaction locks the client row before inserting so that the balance
// recomputation that follows in the same transaction sees every committed entry.
func (r transactionRepo) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	if err := lockClient(ctx, r.q, txn.ClientID); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx, insertTransactionQuery,
		txn.TransactionID,
		txn.ClientID,
		txn.Amount,
		string(txn.Kind),
		txn.OccurredAt,
		txn.Description,
		txn.RelatedSessionID,
		txn.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "transaction", txn.TransactionID)
	}
	return nil
}

func (r transactionRepo) DeleteTransaction(ctx context.Context, transactionID string) (bool, error) {
	var clientID string
	err := r.q.QueryRow(ctx, `SELECT client_id FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&clientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if err := lockClient(ctx, r.q, clientID); err != nil {
		return false, err
	}

	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return tag.RowsAffected() > 0, nil
}
