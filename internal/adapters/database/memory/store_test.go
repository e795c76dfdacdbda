package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	now   time.Time
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStore()
	s.now = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Clients().SaveClient(s.ctx, s.client("c1", "Ada")))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) client(id, name string) domain.Client {
	return domain.Client{ClientID: id, Name: name, IsActive: true, Balance: decimal.Zero, AuditFields: domain.NewAuditFields(s.now)}
}

func (s *StoreTestSuite) session(id string, at time.Time) domain.Session {
	clientID := "c1"
	return domain.Session{
		SessionID:       id,
		Kind:            domain.SessionIndividual,
		ClientID:        &clientID,
		ScheduledAt:     at,
		DurationMinutes: 50,
		Status:          domain.SessionScheduled,
		AuditFields:     domain.NewAuditFields(s.now),
	}
}

func (s *StoreTestSuite) charge(id, sessionID string, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID:    id,
		ClientID:         "c1",
		Amount:           decimal.NewFromInt(amount),
		Kind:             domain.Charge,
		OccurredAt:       at,
		RelatedSessionID: &sessionID,
		CreatedAt:        at,
	}
}

func (s *StoreTestSuite) TestWithTx_RollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.WithTx(s.ctx, func(tx portsrepo.LedgerStore) error {
		s.Require().NoError(tx.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s1", s.now)}))
		s.Require().NoError(tx.Clients().SetClientBalance(s.ctx, "c1", decimal.NewFromInt(99), s.now))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Sessions().FindSessionByID(s.ctx, "s1")
	s.ErrorIs(err, apperrors.ErrNotFound)
	c, err := s.store.Clients().FindClientByID(s.ctx, "c1")
	s.Require().NoError(err)
	s.True(c.Balance.IsZero())
}

func (s *StoreTestSuite) TestWithTx_NestedJoinsOuterUnit() {
	boom := errors.New("boom")
	err := s.store.WithTx(s.ctx, func(tx portsrepo.LedgerStore) error {
		inner := tx.WithTx(s.ctx, func(tx2 portsrepo.LedgerStore) error {
			return tx2.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s1", s.now)})
		})
		s.Require().NoError(inner)

		// The nested write is visible inside the outer unit.
		_, err := tx.Sessions().FindSessionByID(s.ctx, "s1")
		s.Require().NoError(err)
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Sessions().FindSessionByID(s.ctx, "s1")
	s.ErrorIs(err, apperrors.ErrNotFound, "nested writes roll back with the outer unit")
}

func (s *StoreTestSuite) TestWithTx_CommitsOnSuccess() {
	err := s.store.WithTx(s.ctx, func(tx portsrepo.LedgerStore) error {
		return tx.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s1", s.now), s.session("s2", s.now.Add(time.Hour))})
	})
	s.Require().NoError(err)

	sessions, err := s.store.Sessions().ListSessions(s.ctx, time.Time{}, time.Time{})
	s.Require().NoError(err)
	s.Len(sessions, 2)
	s.Equal("s1", sessions[0].SessionID)
}

func (s *StoreTestSuite) TestSaveSessions_DuplicateWritesNothing() {
	s.Require().NoError(s.store.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s1", s.now)}))

	err := s.store.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s2", s.now), s.session("s1", s.now)})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.store.Sessions().FindSessionByID(s.ctx, "s2")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestSaveSessions_RejectsInvalidShape() {
	bad := s.session("s1", s.now)
	bad.DurationMinutes = 0
	err := s.store.Sessions().SaveSessions(s.ctx, []domain.Session{bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestListSessions_HalfOpenRange() {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }
	s.Require().NoError(s.store.Sessions().SaveSessions(s.ctx, []domain.Session{
		s.session("a", day(1)), s.session("b", day(2)), s.session("c", day(3)),
	}))

	got, err := s.store.Sessions().ListSessions(s.ctx, day(2), day(3))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("b", got[0].SessionID)

	got, err = s.store.Sessions().ListSessions(s.ctx, day(2), time.Time{})
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *StoreTestSuite) TestTransitionSession() {
	s.Require().NoError(s.store.Sessions().SaveSessions(s.ctx, []domain.Session{s.session("s1", s.now)}))

	done := s.session("s1", s.now)
	done.Status = domain.SessionCompleted
	done.Notes = "went well"
	s.Require().NoError(s.store.Sessions().TransitionSession(s.ctx, domain.SessionScheduled, done))

	err := s.store.Sessions().TransitionSession(s.ctx, domain.SessionScheduled, done)
	s.ErrorIs(err, apperrors.ErrTerminalState)
	s.ErrorIs(err, apperrors.ErrConflict)

	missing := s.session("nope", s.now)
	err = s.store.Sessions().TransitionSession(s.ctx, domain.SessionScheduled, missing)
	s.ErrorIs(err, apperrors.ErrNotFound)

	got, err := s.store.Sessions().FindSessionByID(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(domain.SessionCompleted, got.Status)
	s.Equal("went well", got.Notes)
}

func (s *StoreTestSuite) TestSaveTransaction_RejectsSecondChargeForSameSessionAndClient() {
	s.Require().NoError(s.store.Transactions().SaveTransaction(s.ctx, s.charge("t1", "s1", 300, s.now)))

	err := s.store.Transactions().SaveTransaction(s.ctx, s.charge("t2", "s1", 300, s.now))
	s.ErrorIs(err, apperrors.ErrAlreadyCharged)
	s.ErrorIs(err, apperrors.ErrConflict)

	// A different session is fine.
	s.NoError(s.store.Transactions().SaveTransaction(s.ctx, s.charge("t3", "s2", 300, s.now)))
}

func (s *StoreTestSuite) TestDeleteTransaction_ReportsWhetherRemoved() {
	s.Require().NoError(s.store.Transactions().SaveTransaction(s.ctx, s.charge("t1", "s1", 300, s.now)))

	deleted, err := s.store.Transactions().DeleteTransaction(s.ctx, "t1")
	s.NoError(err)
	s.True(deleted)

	deleted, err = s.store.Transactions().DeleteTransaction(s.ctx, "t1")
	s.NoError(err)
	s.False(deleted)
}

func (s *StoreTestSuite) TestUpdateClientProfile_KeepsBalance() {
	s.Require().NoError(s.store.Clients().SetClientBalance(s.ctx, "c1", decimal.NewFromInt(300), s.now))

	edited := s.client("c1", "Ada Lovelace")
	edited.Balance = decimal.NewFromInt(-1)
	s.Require().NoError(s.store.Clients().UpdateClientProfile(s.ctx, edited))

	got, err := s.store.Clients().FindClientByID(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", got.Name)
	s.True(decimal.NewFromInt(300).Equal(got.Balance))
}

func (s *StoreTestSuite) TestListClients_HidesArchived() {
	archived := s.client("c2", "Bob")
	archived.IsActive = false
	s.Require().NoError(s.store.Clients().SaveClient(s.ctx, archived))

	active, err := s.store.Clients().ListClients(s.ctx, false)
	s.Require().NoError(err)
	s.Len(active, 1)

	all, err := s.store.Clients().ListClients(s.ctx, true)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func TestListTransactionsByClientID_Pages(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Clients().SaveClient(ctx, domain.Client{ClientID: "c1", Name: "Ada", IsActive: true}))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Transactions().SaveTransaction(ctx, domain.Transaction{
			TransactionID: fmt.Sprintf("t%d", i),
			ClientID:      "c1",
			Amount:        decimal.NewFromInt(10),
			Kind:          domain.Payment,
			OccurredAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	var ids []string
	var token *string
	for page := 0; page < 5; page++ {
		txns, next, err := store.Transactions().ListTransactionsByClientID(ctx, "c1", 2, token)
		require.NoError(t, err)
		for _, txn := range txns {
			ids = append(ids, txn.TransactionID)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"t4", "t3", "t2", "t1", "t0"}, ids)

	bad := "%%%"
	_, _, err := store.Transactions().ListTransactionsByClientID(ctx, "c1", 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
