package repositories

import (
	"context"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction. Returns apperrors.ErrNotFound if absent.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsBySessionID retrieves every transaction tagged with sessionID.
	FindTransactionsBySessionID(ctx context.Context, sessionID string) ([]domain.Transaction, error)

	// FindTransactionsByClientID retrieves the full transaction log of a client.
	FindTransactionsByClientID(ctx context.Context, clientID string) ([]domain.Transaction, error)

	// ListTransactionsByClientID retrieves a page of a client's transactions, newest first.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByClientID(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListTransactions retrieves all transactions.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger transactions
type TransactionWriter interface {
	// SaveTransaction persists a transaction. A second charge for the same
	// session and client returns apperrors.ErrAlreadyCharged.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes a transaction and reports whether a row was removed.
	DeleteTransaction(ctx context.Context, transactionID string) (bool, error)
}

// TransactionRepository combines transaction reads and writes
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
