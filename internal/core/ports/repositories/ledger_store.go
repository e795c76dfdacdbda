package repositories

import "context"

// LedgerStore groups the repositories for the five ledger entities and provides
// the atomic unit-of-work primitive every multi-write operation runs in.
type LedgerStore interface {
	Clients() ClientRepository
	Groups() GroupRepository
	Sessions() SessionRepository
	Transactions() TransactionRepository
	Expenses() ExpenseRepository
	TransactionManager
}

// TransactionManager runs fn as a single all-or-nothing unit.
// If fn returns an error nothing fn wrote is kept. Calling WithTx on the
// store passed to fn joins the outer unit.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(tx LedgerStore) error) error
}
