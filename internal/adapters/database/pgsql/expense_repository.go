package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

type expenseRepo struct {
	q querier
}

var _ portsrepo.ExpenseRepository = expenseRepo{}

func (r expenseRepo) SaveExpense(ctx context.Context, expense domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := r.q.Exec(ctx, query,
		expense.ExpenseID,
		expense.Amount,
		expense.OccurredAt,
		expense.Description,
		expense.Category,
		expense.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "expense", expense.ExpenseID)
	}
	return nil
}

func (r expenseRepo) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	e, err := scanExpense(r.q.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("expense", expenseID)
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	return &e, nil
}

func (r expenseRepo) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY occurred_at, expense_id;`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	expenses, err := collect(rows, scanExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	return expenses, nil
}

func (r expenseRepo) DeleteExpense(ctx context.Context, expenseID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	return tag.RowsAffected() > 0, nil
}
