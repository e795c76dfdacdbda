package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

// ClientLedgerSvc defines operations on client transactions
type ClientLedgerSvc interface {
	// ChargeForSession bills a completed session. It is safe to retry: clients already
	// charged for the session are skipped. A failure after some members were charged
	// returns apperrors.ErrPartiallyApplied.
	ChargeForSession(ctx context.Context, sessionID string) ([]domain.Transaction, error)

	// RecordPayment records money received from a client.
	RecordPayment(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Transaction, error)

	// DeleteTransaction reverses a transaction. A missing transaction is a no-op.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// ListClientTransactions retrieves a page of a client's ledger, newest first.
	ListClientTransactions(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// ExpenseLedgerSvc defines operations on practice expenses
type ExpenseLedgerSvc interface {
	RecordExpense(ctx context.Context, amount decimal.Decimal, description, category string) (*domain.Expense, error)

	// DeleteExpense removes an expense. A missing expense is a no-op.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// LedgerMaintenanceSvc defines consistency checks over the ledger
type LedgerMaintenanceSvc interface {
	// ReconcileBalances recomputes every client balance from its transaction log and
	// corrects any that drifted.
	ReconcileBalances(ctx context.Context) (*domain.ReconciliationReport, error)
}

// BillingLedgerTxSupport is used by the session scheduler to bill and reverse
// sessions inside its own unit of work.
type BillingLedgerTxSupport interface {
	// ResolveFee returns the amount a session bills: its own fee, else the client's
	// or group's default fee, else nil.
	ResolveFee(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) (*decimal.Decimal, error)

	// ChargeSessionInTx writes every missing charge for session using tx.
	ChargeSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) ([]domain.Transaction, error)

	// ReverseSessionInTx deletes every transaction tagged with sessionID using tx
	// and returns how many were reversed.
	ReverseSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, sessionID string) (int, error)
}

// BillingLedgerSvc combines all ledger-related service interfaces
type BillingLedgerSvc interface {
	ClientLedgerSvc
	ExpenseLedgerSvc
	LedgerMaintenanceSvc
	BillingLedgerTxSupport
}
