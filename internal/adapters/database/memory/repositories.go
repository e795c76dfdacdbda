package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/practice_ledger_app/internal/utils/pagination"
)

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrNotFound)
}

func duplicate(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, apperrors.ErrDuplicate)
}

// --- clients ---

type clientRepo struct{ b backend }

var _ portsrepo.ClientRepository = clientRepo{}

func (r clientRepo) FindClientByID(_ context.Context, clientID string) (*domain.Client, error) {
	var out *domain.Client
	err := r.b.read(func(st *state) error {
		c, ok := st.clients[clientID]
		if !ok {
			return notFound("client", clientID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r clientRepo) FindClientsByIDs(_ context.Context, clientIDs []string) (map[string]domain.Client, error) {
	out := make(map[string]domain.Client, len(clientIDs))
	err := r.b.read(func(st *state) error {
		for _, id := range clientIDs {
			if c, ok := st.clients[id]; ok {
				out[id] = c
			}
		}
		return nil
	})
	return out, err
}

func (r clientRepo) ListClients(_ context.Context, includeArchived bool) ([]domain.Client, error) {
	out := []domain.Client{}
	err := r.b.read(func(st *state) error {
		for _, c := range st.clients {
			if c.IsActive || includeArchived {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ClientID < out[j].ClientID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r clientRepo) SaveClient(_ context.Context, client domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.clients[client.ClientID]; ok {
			return duplicate("client", client.ClientID)
		}
		st.clients[client.ClientID] = client
		return nil
	})
}

func (r clientRepo) UpdateClientProfile(_ context.Context, client domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		existing, ok := st.clients[client.ClientID]
		if !ok {
			return notFound("client", client.ClientID)
		}
		client.Balance = existing.Balance
		client.CreatedAt = existing.CreatedAt
		st.clients[client.ClientID] = client
		return nil
	})
}

func (r clientRepo) SetClientBalance(_ context.Context, clientID string, balance decimal.Decimal, now time.Time) error {
	return r.b.write(func(st *state) error {
		c, ok := st.clients[clientID]
		if !ok {
			return notFound("client", clientID)
		}
		c.Balance = balance
		c.LastUpdatedAt = now
		st.clients[clientID] = c
		return nil
	})
}

// --- groups ---

type groupRepo struct{ b backend }

var _ portsrepo.GroupRepository = groupRepo{}

func copyGroup(g domain.Group) domain.Group {
	g.ClientIDs = append([]string(nil), g.ClientIDs...)
	return g
}

func (r groupRepo) SaveGroup(_ context.Context, group domain.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.groups[group.GroupID]; ok {
			return duplicate("group", group.GroupID)
		}
		st.groups[group.GroupID] = copyGroup(group)
		return nil
	})
}

func (r groupRepo) UpdateGroup(_ context.Context, group domain.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		existing, ok := st.groups[group.GroupID]
		if !ok {
			return notFound("group", group.GroupID)
		}
		group.CreatedAt = existing.CreatedAt
		st.groups[group.GroupID] = copyGroup(group)
		return nil
	})
}

func (r groupRepo) FindGroupByID(_ context.Context, groupID string) (*domain.Group, error) {
	var out *domain.Group
	err := r.b.read(func(st *state) error {
		g, ok := st.groups[groupID]
		if !ok {
			return notFound("group", groupID)
		}
		g = copyGroup(g)
		out = &g
		return nil
	})
	return out, err
}

func (r groupRepo) ListGroups(_ context.Context, includeArchived bool) ([]domain.Group, error) {
	out := []domain.Group{}
	err := r.b.read(func(st *state) error {
		for _, g := range st.groups {
			if g.IsActive || includeArchived {
				out = append(out, copyGroup(g))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

// --- sessions ---

type sessionRepo struct{ b backend }

var _ portsrepo.SessionRepository = sessionRepo{}

func (r sessionRepo) FindSessionByID(_ context.Context, sessionID string) (*domain.Session, error) {
	var out *domain.Session
	err := r.b.read(func(st *state) error {
		s, ok := st.sessions[sessionID]
		if !ok {
			return notFound("session", sessionID)
		}
		out = &s
		return nil
	})
	return out, err
}

func (r sessionRepo) ListSessions(_ context.Context, from, to time.Time) ([]domain.Session, error) {
	out := []domain.Session{}
	err := r.b.read(func(st *state) error {
		for _, s := range st.sessions {
			if !from.IsZero() && s.ScheduledAt.Before(from) {
				continue
			}
			if !to.IsZero() && !s.ScheduledAt.Before(to) {
				continue
			}
			out = append(out, s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, err
}

func (r sessionRepo) SaveSessions(_ context.Context, sessions []domain.Session) error {
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return r.b.write(func(st *state) error {
		seen := make(map[string]struct{}, len(sessions))
		for _, s := range sessions {
			if _, ok := st.sessions[s.SessionID]; ok {
				return duplicate("session", s.SessionID)
			}
			if _, ok := seen[s.SessionID]; ok {
				return duplicate("session", s.SessionID)
			}
			seen[s.SessionID] = struct{}{}
		}
		for _, s := range sessions {
			st.sessions[s.SessionID] = s
		}
		return nil
	})
}

func (r sessionRepo) TransitionSession(_ context.Context, from domain.SessionStatus, updated domain.Session) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		current, ok := st.sessions[updated.SessionID]
		if !ok {
			return notFound("session", updated.SessionID)
		}
		if current.Status != from {
			return fmt.Errorf("session %s is %s: %w", updated.SessionID, current.Status, apperrors.ErrTerminalState)
		}
		current.Status = updated.Status
		current.Notes = updated.Notes
		current.Fee = updated.Fee
		current.LastUpdatedAt = updated.LastUpdatedAt
		st.sessions[updated.SessionID] = current
		return nil
	})
}

func (r sessionRepo) DeleteSession(_ context.Context, sessionID string) (bool, error) {
	deleted := false
	err := r.b.write(func(st *state) error {
		if _, ok := st.sessions[sessionID]; ok {
			delete(st.sessions, sessionID)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

// --- transactions ---

type transactionRepo struct{ b backend }

var _ portsrepo.TransactionRepository = transactionRepo{}

// sortOldestFirst orders by OccurredAt, then CreatedAt, then ID.
func sortOldestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.TransactionID < b.TransactionID
	})
}

func (r transactionRepo) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.b.read(func(st *state) error {
		t, ok := st.transactions[transactionID]
		if !ok {
			return notFound("transaction", transactionID)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r transactionRepo) filter(keep func(domain.Transaction) bool) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := r.b.read(func(st *state) error {
		for _, t := range st.transactions {
			if keep(t) {
				out = append(out, t)
			}
		}
		return nil
	})
	sortOldestFirst(out)
	return out, err
}

func (r transactionRepo) FindTransactionsBySessionID(_ context.Context, sessionID string) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool {
		return t.RelatedSessionID != nil && *t.RelatedSessionID == sessionID
	})
}

func (r transactionRepo) FindTransactionsByClientID(_ context.Context, clientID string) ([]domain.Transaction, error) {
	return r.filter(func(t domain.Transaction) bool { return t.ClientID == clientID })
}

func (r transactionRepo) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	return r.filter(func(domain.Transaction) bool { return true })
}

func (r transactionRepo) ListTransactionsByClientID(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.ClampLimit(limit)
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &c
	}

	all, err := r.FindTransactionsByClientID(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].OccurredAt.Equal(all[j].OccurredAt) {
			return all[i].TransactionID > all[j].TransactionID
		}
		return all[i].OccurredAt.After(all[j].OccurredAt)
	})

	page := make([]domain.Transaction, 0, limit)
	hasMore := false
	for _, t := range all {
		if cursor != nil && !cursor.Before(t.OccurredAt, t.TransactionID) {
			continue
		}
		if len(page) == limit {
			hasMore = true
			break
		}
		page = append(page, t)
	}

	var next *string
	if hasMore {
		last := page[len(page)-1]
		token := pagination.EncodeToken(last.OccurredAt, last.TransactionID)
		next = &token
	}
	return page, next, nil
}

func (r transactionRepo) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.transactions[txn.TransactionID]; ok {
			return duplicate("transaction", txn.TransactionID)
		}
		if txn.Kind == domain.Charge && txn.RelatedSessionID != nil {
			for _, existing := range st.transactions {
				if existing.IsChargeFor(*txn.RelatedSessionID, txn.ClientID) {
					return fmt.Errorf("session %s client %s: %w", *txn.RelatedSessionID, txn.ClientID, apperrors.ErrAlreadyCharged)
				}
			}
		}
		st.transactions[txn.TransactionID] = txn
		return nil
	})
}

func (r transactionRepo) DeleteTransaction(_ context.Context, transactionID string) (bool, error) {
	deleted := false
	err := r.b.write(func(st *state) error {
		if _, ok := st.transactions[transactionID]; ok {
			delete(st.transactions, transactionID)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

// --- expenses ---

type expenseRepo struct{ b backend }

var _ portsrepo.ExpenseRepository = expenseRepo{}

func (r expenseRepo) SaveExpense(_ context.Context, expense domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.expenses[expense.ExpenseID]; ok {
			return duplicate("expense", expense.ExpenseID)
		}
		st.expenses[expense.ExpenseID] = expense
		return nil
	})
}

func (r expenseRepo) FindExpenseByID(_ context.Context, expenseID string) (*domain.Expense, error) {
	var out *domain.Expense
	err := r.b.read(func(st *state) error {
		e, ok := st.expenses[expenseID]
		if !ok {
			return notFound("expense", expenseID)
		}
		out = &e
		return nil
	})
	return out, err
}

func (r expenseRepo) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	out := []domain.Expense{}
	err := r.b.read(func(st *state) error {
		for _, e := range st.expenses {
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].ExpenseID < out[j].ExpenseID
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, err
}

func (r expenseRepo) DeleteExpense(_ context.Context, expenseID string) (bool, error) {
	deleted := false
	err := r.b.write(func(st *state) error {
		if _, ok := st.expenses[expenseID]; ok {
			delete(st.expenses, expenseID)
			deleted = true
		}
		return nil
	})
	return deleted, err
}
