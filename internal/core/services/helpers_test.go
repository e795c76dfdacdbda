package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/adapters/database/memory"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NewID() string {
	return fmt.Sprintf("id-%03d", g.n.Add(1))
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func feePtr(v int64) *decimal.Decimal {
	d := money(v)
	return &d
}

func strPtr(s string) *string { return &s }

// testEnv wires every service over an in-memory store.
type testEnv struct {
	ctx   context.Context
	store portsrepo.LedgerStore
	clock *fixedClock
	ids   *seqIDs
	svc   *Container
}

func newTestEnv() *testEnv {
	return newTestEnvWithStore(memory.NewStore())
}

func newTestEnvWithStore(store portsrepo.LedgerStore) *testEnv {
	clock := &fixedClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}
	return &testEnv{
		ctx:   context.Background(),
		store: store,
		clock: clock,
		ids:   ids,
		svc:   NewContainer(store, clock, ids, ContainerConfig{}),
	}
}

func (e *testEnv) mustClient(name string, defaultFee *decimal.Decimal) domain.Client {
	c, err := e.svc.Clients.CreateClient(e.ctx, dto.CreateClientRequest{Name: name, DefaultFee: defaultFee})
	if err != nil {
		panic(err)
	}
	return *c
}

func (e *testEnv) mustGroup(name string, defaultFee *decimal.Decimal, members ...string) domain.Group {
	g, err := e.svc.Groups.CreateGroup(e.ctx, dto.CreateGroupRequest{Name: name, ClientIDs: members, DefaultFee: defaultFee})
	if err != nil {
		panic(err)
	}
	return *g
}

func (e *testEnv) mustIndividualSession(clientID string) domain.Session {
	sessions, err := e.svc.Sessions.ScheduleSessions(e.ctx, dto.ScheduleSessionRequest{
		Kind:            domain.SessionIndividual,
		ClientID:        strPtr(clientID),
		ScheduledAt:     e.clock.Now(),
		DurationMinutes: 50,
	})
	if err != nil {
		panic(err)
	}
	return sessions[0]
}

func (e *testEnv) mustGroupSession(groupID string) domain.Session {
	sessions, err := e.svc.Sessions.ScheduleSessions(e.ctx, dto.ScheduleSessionRequest{
		Kind:            domain.SessionGroup,
		GroupID:         strPtr(groupID),
		ScheduledAt:     e.clock.Now(),
		DurationMinutes: 90,
	})
	if err != nil {
		panic(err)
	}
	return sessions[0]
}

func (e *testEnv) balance(clientID string) decimal.Decimal {
	c, err := e.store.Clients().FindClientByID(e.ctx, clientID)
	if err != nil {
		panic(err)
	}
	return c.Balance
}

// logBalance folds the client's transaction log, the value the cached balance must equal.
func (e *testEnv) logBalance(clientID string) decimal.Decimal {
	txns, err := e.store.Transactions().FindTransactionsByClientID(e.ctx, clientID)
	if err != nil {
		panic(err)
	}
	return domain.BalanceOf(txns)
}

func (e *testEnv) sessionTransactions(sessionID string) []domain.Transaction {
	txns, err := e.store.Transactions().FindTransactionsBySessionID(e.ctx, sessionID)
	if err != nil {
		panic(err)
	}
	return txns
}

var errDiskOnFire = errors.New("disk on fire")

// flakyStore fails SaveTransaction for one client a set number of times.
type flakyStore struct {
	portsrepo.LedgerStore
	root *flakyState
}

type flakyState struct {
	mu         sync.Mutex
	failClient string
	failures   int
}

func newFlakyStore(inner portsrepo.LedgerStore, failClient string, failures int) *flakyStore {
	return &flakyStore{LedgerStore: inner, root: &flakyState{failClient: failClient, failures: failures}}
}

func (f *flakyStore) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerStore) error) error {
	return f.LedgerStore.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		return fn(&flakyStore{LedgerStore: tx, root: f.root})
	})
}

func (f *flakyStore) Transactions() portsrepo.TransactionRepository {
	return flakyTransactions{TransactionRepository: f.LedgerStore.Transactions(), root: f.root}
}

type flakyTransactions struct {
	portsrepo.TransactionRepository
	root *flakyState
}

func (t flakyTransactions) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	t.root.mu.Lock()
	fail := txn.ClientID == t.root.failClient && t.root.failures > 0
	if fail {
		t.root.failures--
	}
	t.root.mu.Unlock()
	if fail {
		return errDiskOnFire
	}
	return t.TransactionRepository.SaveTransaction(ctx, txn)
}

// txHookStore runs beforeTx ahead of every unit of work, numbered from 1.
type txHookStore struct {
	portsrepo.LedgerStore
	calls    int
	beforeTx func(call int)
}

func (h *txHookStore) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerStore) error) error {
	h.calls++
	if h.beforeTx != nil {
		h.beforeTx(h.calls)
	}
	return h.LedgerStore.WithTx(ctx, fn)
}
