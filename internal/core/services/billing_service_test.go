package services

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

func TestRecordPayment_Validation(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", nil)

	tests := []struct {
		name     string
		clientID string
		amount   decimal.Decimal
		wantErr  error
	}{
		{"zero amount", client.ClientID, decimal.Zero, apperrors.ErrValidation},
		{"negative amount", client.ClientID, money(-5), apperrors.ErrValidation},
		{"unknown client", "ghost", money(10), apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Billing.RecordPayment(env.ctx, tt.clientID, tt.amount, "cash")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	txns, err := env.store.Transactions().ListTransactions(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestPaymentCanLeaveClientInCredit(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", nil)

	_, err := env.svc.Billing.RecordPayment(env.ctx, client.ClientID, money(120), "prepaid")
	require.NoError(t, err)
	assert.True(t, money(-120).Equal(env.balance(client.ClientID)))
}

func TestDeleteTransaction_RestoresPriorBalanceAndIsIdempotent(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", feePtr(300))
	session := env.mustIndividualSession(client.ClientID)
	_, err := env.svc.Sessions.CompleteSession(env.ctx, session.SessionID, dto.CompleteSessionRequest{})
	require.NoError(t, err)

	before := env.balance(client.ClientID)
	payment, err := env.svc.Billing.RecordPayment(env.ctx, client.ClientID, decimal.RequireFromString("125.50"), "card")
	require.NoError(t, err)
	assert.Equal(t, "174.5", env.balance(client.ClientID).String())

	require.NoError(t, env.svc.Billing.DeleteTransaction(env.ctx, payment.TransactionID))
	assert.True(t, before.Equal(env.balance(client.ClientID)))

	require.NoError(t, env.svc.Billing.DeleteTransaction(env.ctx, payment.TransactionID), "re-deleting is a no-op")
	assert.True(t, before.Equal(env.balance(client.ClientID)))

	// Reversing the session charge brings the client back to zero.
	charges := env.sessionTransactions(session.SessionID)
	require.Len(t, charges, 1)
	require.NoError(t, env.svc.Billing.DeleteTransaction(env.ctx, charges[0].TransactionID))
	assert.True(t, env.balance(client.ClientID).IsZero())
}

func TestChargeForSession_RequiresCompletedSession(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", feePtr(300))
	session := env.mustIndividualSession(client.ClientID)

	_, err := env.svc.Billing.ChargeForSession(env.ctx, session.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.svc.Billing.ChargeForSession(env.ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChargeForSession_IsRetrySafe(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", feePtr(300))
	session := env.mustIndividualSession(client.ClientID)
	_, err := env.svc.Sessions.CompleteSession(env.ctx, session.SessionID, dto.CompleteSessionRequest{})
	require.NoError(t, err)

	charges, err := env.svc.Billing.ChargeForSession(env.ctx, session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, charges, "the client was already charged at completion")
	assert.Len(t, env.sessionTransactions(session.SessionID), 1)
	assert.True(t, money(300).Equal(env.balance(client.ClientID)))
}

// seedCompletedGroupSession stores a completed group session with no charges,
// the state a crash between completion and billing would leave behind.
func seedCompletedGroupSession(t *testing.T, env *testEnv, groupID string) domain.Session {
	t.Helper()
	session := domain.Session{
		SessionID:       "legacy-session",
		Kind:            domain.SessionGroup,
		GroupID:         &groupID,
		ScheduledAt:     env.clock.Now(),
		DurationMinutes: 90,
		Status:          domain.SessionCompleted,
		AuditFields:     domain.NewAuditFields(env.clock.Now()),
	}
	require.NoError(t, env.store.Sessions().SaveSessions(env.ctx, []domain.Session{session}))
	return session
}

func TestChargeForSession_PartialFanOutConvergesOnRetry(t *testing.T) {
	seed := newTestEnv()
	a := seed.mustClient("A", nil)
	b := seed.mustClient("B", nil)
	c := seed.mustClient("C", nil)
	group := seed.mustGroup("G", feePtr(100), a.ClientID, b.ClientID, c.ClientID)
	session := seedCompletedGroupSession(t, seed, group.GroupID)

	env := newTestEnvWithStore(newFlakyStore(seed.store, b.ClientID, 1))

	charges, err := env.svc.Billing.ChargeForSession(env.ctx, session.SessionID)
	require.ErrorIs(t, err, apperrors.ErrPartiallyApplied)
	assert.ErrorIs(t, err, errDiskOnFire)
	require.Len(t, charges, 1)
	assert.Equal(t, a.ClientID, charges[0].ClientID)
	assert.True(t, money(100).Equal(env.balance(a.ClientID)), "the first member's charge is durable")
	assert.True(t, env.balance(b.ClientID).IsZero())
	assert.True(t, env.balance(c.ClientID).IsZero())

	charges, err = env.svc.Billing.ChargeForSession(env.ctx, session.SessionID)
	require.NoError(t, err)
	assert.Len(t, charges, 2, "only the missing members are charged")

	assert.Len(t, env.sessionTransactions(session.SessionID), 3)
	for _, id := range []string{a.ClientID, b.ClientID, c.ClientID} {
		assert.True(t, money(100).Equal(env.balance(id)), "client %s", id)
		assert.True(t, env.balance(id).Equal(env.logBalance(id)))
	}
}

func TestChargeForSession_FirstMemberFailureIsPlainError(t *testing.T) {
	seed := newTestEnv()
	a := seed.mustClient("A", nil)
	b := seed.mustClient("B", nil)
	group := seed.mustGroup("G", feePtr(100), a.ClientID, b.ClientID)
	session := seedCompletedGroupSession(t, seed, group.GroupID)

	env := newTestEnvWithStore(newFlakyStore(seed.store, a.ClientID, 1))
	_, err := env.svc.Billing.ChargeForSession(env.ctx, session.SessionID)
	require.ErrorIs(t, err, errDiskOnFire)
	assert.NotErrorIs(t, err, apperrors.ErrPartiallyApplied)
	assert.Empty(t, env.sessionTransactions(session.SessionID))
}

func TestRecordAndDeleteExpense(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", nil)

	_, err := env.svc.Billing.RecordExpense(env.ctx, money(10), "   ", "Office")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = env.svc.Billing.RecordExpense(env.ctx, decimal.Zero, "rent", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	expense, err := env.svc.Billing.RecordExpense(env.ctx, money(800), "rent", "Office")
	require.NoError(t, err)
	assert.Equal(t, "Office", expense.Category)
	assert.True(t, env.balance(client.ClientID).IsZero(), "expenses never touch balances")

	require.NoError(t, env.svc.Billing.DeleteExpense(env.ctx, expense.ExpenseID))
	require.NoError(t, env.svc.Billing.DeleteExpense(env.ctx, expense.ExpenseID))
	expenses, err := env.store.Expenses().ListExpenses(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestReconcileBalances_CorrectsDrift(t *testing.T) {
	env := newTestEnv()
	a := env.mustClient("A", feePtr(300))
	b := env.mustClient("B", nil)
	session := env.mustIndividualSession(a.ClientID)
	_, err := env.svc.Sessions.CompleteSession(env.ctx, session.SessionID, dto.CompleteSessionRequest{})
	require.NoError(t, err)

	// Simulate an out-of-band write to the cached balance.
	require.NoError(t, env.store.Clients().SetClientBalance(env.ctx, b.ClientID, money(42), env.clock.Now()))

	report, err := env.svc.Billing.ReconcileBalances(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ClientsChecked)
	require.Len(t, report.Drifted, 1)
	assert.Equal(t, b.ClientID, report.Drifted[0].ClientID)
	assert.True(t, money(42).Equal(report.Drifted[0].Cached))
	assert.True(t, report.Drifted[0].Actual.IsZero())
	assert.True(t, env.balance(b.ClientID).IsZero())
	assert.True(t, money(300).Equal(env.balance(a.ClientID)))

	report, err = env.svc.Billing.ReconcileBalances(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Drifted)
}

func TestListClientTransactions(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", nil)
	for i := 0; i < 3; i++ {
		_, err := env.svc.Billing.RecordPayment(env.ctx, client.ClientID, money(10), "")
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}

	page, next, err := env.svc.Billing.ListClientTransactions(env.ctx, client.ClientID, 2, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	require.NotNil(t, next)

	page, next, err = env.svc.Billing.ListClientTransactions(env.ctx, client.ClientID, 2, next)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Nil(t, next)

	_, _, err = env.svc.Billing.ListClientTransactions(env.ctx, "ghost", 2, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChargeForSession_SessionDeletedBeforeCharge(t *testing.T) {
	env := newTestEnv()
	client := env.mustClient("Ada", feePtr(300))
	session := env.mustIndividualSession(client.ClientID)
	_, err := env.svc.Sessions.CompleteSession(env.ctx, session.SessionID, dto.CompleteSessionRequest{})
	require.NoError(t, err)

	// Drop the completion charge so a charge run has work to do.
	existing := env.sessionTransactions(session.SessionID)
	require.Len(t, existing, 1)
	require.NoError(t, env.svc.Billing.DeleteTransaction(env.ctx, existing[0].TransactionID))

	hooked := &txHookStore{LedgerStore: env.store, beforeTx: func(call int) {
		if call == 1 {
			require.NoError(t, env.svc.Sessions.DeleteSession(env.ctx, session.SessionID))
		}
	}}
	billing := NewBillingService(hooked, env.clock, env.ids)

	charges, err := billing.ChargeForSession(env.ctx, session.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, charges)
	assert.Empty(t, env.sessionTransactions(session.SessionID))
	assert.True(t, env.balance(client.ClientID).IsZero())
	assert.True(t, env.logBalance(client.ClientID).IsZero())
}

func TestChargeForSession_StopsFanOutWhenSessionIsDeleted(t *testing.T) {
	env := newTestEnv()
	a := env.mustClient("Ada", nil)
	b := env.mustClient("Bo", nil)
	group := env.mustGroup("Tuesday group", feePtr(100), a.ClientID, b.ClientID)
	session := seedCompletedGroupSession(t, env, group.GroupID)

	hooked := &txHookStore{LedgerStore: env.store, beforeTx: func(call int) {
		if call == 2 {
			require.NoError(t, env.svc.Sessions.DeleteSession(env.ctx, session.SessionID))
		}
	}}
	billing := NewBillingService(hooked, env.clock, env.ids)

	_, err := billing.ChargeForSession(env.ctx, session.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrPartiallyApplied)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Empty(t, env.sessionTransactions(session.SessionID))
	for _, id := range []string{a.ClientID, b.ClientID} {
		assert.True(t, env.balance(id).IsZero(), "balance of %s", id)
		assert.True(t, env.logBalance(id).IsZero(), "log balance of %s", id)
	}
}

// assertLedgerInvariants checks cached balances against the log, one charge per
// (session, client), and that every charge points at a live session.
func assertLedgerInvariants(t *testing.T, env *testEnv, clientIDs []string) {
	t.Helper()
	for _, id := range clientIDs {
		require.Truef(t, env.balance(id).Equal(env.logBalance(id)),
			"cached balance of %s is %s, log says %s", id, env.balance(id), env.logBalance(id))
	}

	txns, err := env.store.Transactions().ListTransactions(env.ctx)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, txn := range txns {
		if txn.Kind != domain.Charge || txn.RelatedSessionID == nil {
			continue
		}
		key := *txn.RelatedSessionID + "/" + txn.ClientID
		require.Falsef(t, seen[key], "duplicate charge for %s", key)
		seen[key] = true

		_, err := env.store.Sessions().FindSessionByID(env.ctx, *txn.RelatedSessionID)
		require.NoErrorf(t, err, "charge %s tagged with a missing session", txn.TransactionID)
	}
}

func requireExpectedOutcome(t *testing.T, op string, err error) {
	t.Helper()
	if err == nil || errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
		return
	}
	require.NoError(t, err, op)
}

func TestLedgerInvariantsUnderRandomOperations(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			env := newTestEnv()

			clients := []domain.Client{
				env.mustClient("Ada", feePtr(120)),
				env.mustClient("Bo", feePtr(95)),
				env.mustClient("Cy", nil),
			}
			clientIDs := make([]string, 0, len(clients))
			for _, c := range clients {
				clientIDs = append(clientIDs, c.ClientID)
			}
			group := env.mustGroup("Group", feePtr(60), clientIDs...)

			var sessionIDs []string
			pickSession := func() (string, bool) {
				if len(sessionIDs) == 0 {
					return "", false
				}
				return sessionIDs[rng.Intn(len(sessionIDs))], true
			}

			for step := 0; step < 80; step++ {
				switch rng.Intn(7) {
				case 0:
					var session domain.Session
					if rng.Intn(3) == 0 {
						session = env.mustGroupSession(group.GroupID)
					} else {
						session = env.mustIndividualSession(clientIDs[rng.Intn(len(clientIDs))])
					}
					sessionIDs = append(sessionIDs, session.SessionID)
				case 1:
					if id, ok := pickSession(); ok {
						req := dto.CompleteSessionRequest{}
						if rng.Intn(4) == 0 {
							req.Fee = feePtr(int64(rng.Intn(3) * 50))
						}
						_, err := env.svc.Sessions.CompleteSession(env.ctx, id, req)
						requireExpectedOutcome(t, "complete", err)
					}
				case 2:
					if id, ok := pickSession(); ok {
						_, err := env.svc.Billing.ChargeForSession(env.ctx, id)
						requireExpectedOutcome(t, "charge", err)
					}
				case 3:
					id := clientIDs[rng.Intn(len(clientIDs))]
					_, err := env.svc.Billing.RecordPayment(env.ctx, id, money(int64(rng.Intn(200)+1)), "")
					require.NoError(t, err)
				case 4:
					txns, err := env.store.Transactions().ListTransactions(env.ctx)
					require.NoError(t, err)
					if len(txns) > 0 {
						require.NoError(t, env.svc.Billing.DeleteTransaction(env.ctx, txns[rng.Intn(len(txns))].TransactionID))
					}
				case 5:
					if id, ok := pickSession(); ok {
						require.NoError(t, env.svc.Sessions.DeleteSession(env.ctx, id))
					}
				case 6:
					if id, ok := pickSession(); ok {
						_, err := env.svc.Sessions.CancelSession(env.ctx, id)
						requireExpectedOutcome(t, "cancel", err)
					}
				}
				env.clock.Advance(time.Minute)
				assertLedgerInvariants(t, env, clientIDs)
			}
		})
	}
}
