package pgsql

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// loaded validates an entity read back from the database so corrupt rows
// surface as errors instead of flowing into billing.
func loaded[T interface{ Validate() error }](entity, id string, v T) (T, error) {
	if err := v.Validate(); err != nil {
		var zero T
		return zero, fmt.Errorf("stored %s %s is invalid: %w", entity, id, err)
	}
	return v, nil
}

const clientColumns = `client_id, name, phone, email, notes, default_fee, balance, is_active, created_at, last_updated_at`

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c   domain.Client
		fee decimal.NullDecimal
	)
	if err := row.Scan(&c.ClientID, &c.Name, &c.Phone, &c.Email, &c.Notes, &fee, &c.Balance, &c.IsActive, &c.CreatedAt, &c.LastUpdatedAt); err != nil {
		return domain.Client{}, err
	}
	c.DefaultFee = decimalPtr(fee)
	return loaded("client", c.ClientID, c)
}

const groupColumns = `group_id, name, client_ids, notes, default_fee, is_active, created_at, last_updated_at`

func scanGroup(row rowScanner) (domain.Group, error) {
	var (
		g   domain.Group
		fee decimal.NullDecimal
	)
	if err := row.Scan(&g.GroupID, &g.Name, &g.ClientIDs, &g.Notes, &fee, &g.IsActive, &g.CreatedAt, &g.LastUpdatedAt); err != nil {
		return domain.Group{}, err
	}
	if g.ClientIDs == nil {
		g.ClientIDs = []string{}
	}
	g.DefaultFee = decimalPtr(fee)
	return loaded("group", g.GroupID, g)
}

const sessionColumns = `session_id, kind, client_id, group_id, title, scheduled_at, duration_minutes, status, notes, fee, created_at, last_updated_at`

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s           domain.Session
		kind, state string
		fee         decimal.NullDecimal
	)
	if err := row.Scan(&s.SessionID, &kind, &s.ClientID, &s.GroupID, &s.Title, &s.ScheduledAt, &s.DurationMinutes, &state, &s.Notes, &fee, &s.CreatedAt, &s.LastUpdatedAt); err != nil {
		return domain.Session{}, err
	}
	s.Kind = domain.SessionKind(kind)
	s.Status = domain.SessionStatus(state)
	s.Fee = decimalPtr(fee)
	return loaded("session", s.SessionID, s)
}

const transactionColumns = `transaction_id, client_id, amount, kind, occurred_at, description, related_session_id, created_at`

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		t    domain.Transaction
		kind string
	)
	if err := row.Scan(&t.TransactionID, &t.ClientID, &t.Amount, &kind, &t.OccurredAt, &t.Description, &t.RelatedSessionID, &t.CreatedAt); err != nil {
		return domain.Transaction{}, err
	}
	t.Kind = domain.TransactionKind(kind)
	return loaded("transaction", t.TransactionID, t)
}

const expenseColumns = `expense_id, amount, occurred_at, description, category, created_at`

func scanExpense(row rowScanner) (domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(&e.ExpenseID, &e.Amount, &e.OccurredAt, &e.Description, &e.Category, &e.CreatedAt); err != nil {
		return domain.Expense{}, err
	}
	return loaded("expense", e.ExpenseID, e)
}

// collect scans every row with scan. It closes rows.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
