// Package memory provides an in-process LedgerStore for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

// state is one consistent copy of every entity table.
type state struct {
	clients      map[string]domain.Client
	groups       map[string]domain.Group
	sessions     map[string]domain.Session
	transactions map[string]domain.Transaction
	expenses     map[string]domain.Expense
}

func newState() *state {
	return &state{
		clients:      make(map[string]domain.Client),
		groups:       make(map[string]domain.Group),
		sessions:     make(map[string]domain.Session),
		transactions: make(map[string]domain.Transaction),
		expenses:     make(map[string]domain.Expense),
	}
}

// clone copies the maps. Entities are stored by value and replaced, never
// mutated in place, so a shallow copy per map is enough.
func (s *state) clone() *state {
	c := &state{
		clients:      make(map[string]domain.Client, len(s.clients)),
		groups:       make(map[string]domain.Group, len(s.groups)),
		sessions:     make(map[string]domain.Session, len(s.sessions)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		expenses:     make(map[string]domain.Expense, len(s.expenses)),
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.expenses {
		c.expenses[k] = v
	}
	return c
}

// backend is how repositories reach the state: through the store lock, or
// directly on the working copy of an open unit of work.
type backend interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

// Store is a LedgerStore kept in memory.
// WithTx works on a private copy of the state and swaps it in only when fn succeeds.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

var _ portsrepo.LedgerStore = (*Store)(nil)

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write runs a single repository call. Every call checks before it mutates,
// so a failed call leaves the state untouched.
func (s *Store) write(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Clients() portsrepo.ClientRepository           { return clientRepo{b: s} }
func (s *Store) Groups() portsrepo.GroupRepository             { return groupRepo{b: s} }
func (s *Store) Sessions() portsrepo.SessionRepository         { return sessionRepo{b: s} }
func (s *Store) Transactions() portsrepo.TransactionRepository { return transactionRepo{b: s} }
func (s *Store) Expenses() portsrepo.ExpenseRepository         { return expenseRepo{b: s} }

// WithTx runs fn against a working copy of the state while holding the write
// lock. fn must only use the store it is given.
func (s *Store) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(&txView{st: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

// txView is the store handed to a WithTx callback.
type txView struct {
	st *state
}

var _ portsrepo.LedgerStore = (*txView)(nil)

func (v *txView) read(fn func(*state) error) error  { return fn(v.st) }
func (v *txView) write(fn func(*state) error) error { return fn(v.st) }

func (v *txView) Clients() portsrepo.ClientRepository           { return clientRepo{b: v} }
func (v *txView) Groups() portsrepo.GroupRepository             { return groupRepo{b: v} }
func (v *txView) Sessions() portsrepo.SessionRepository         { return sessionRepo{b: v} }
func (v *txView) Transactions() portsrepo.TransactionRepository { return transactionRepo{b: v} }
func (v *txView) Expenses() portsrepo.ExpenseRepository         { return expenseRepo{b: v} }

// WithTx joins the enclosing unit of work.
func (v *txView) WithTx(_ context.Context, fn func(tx portsrepo.LedgerStore) error) error {
	return fn(v)
}
