package repositories

import (
	"context"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// ExpenseRepository defines persistence operations for expenses.
type ExpenseRepository interface {
	SaveExpense(ctx context.Context, expense domain.Expense) error
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) (bool, error)
}
