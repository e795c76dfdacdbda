package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/platform/metrics"
)

const defaultPaymentDescription = "Payment"

// billingService implements the BillingLedgerSvc interface
type billingService struct {
	BaseService
	store portsrepo.LedgerStore
	clock ports.Clock
	ids   ports.IDGenerator
}

// BillingServiceOption is a functional option for configuring the billing service
type BillingServiceOption func(*billingService)

// WithBillingReportCache sets the cache invalidated after ledger writes.
func WithBillingReportCache(cache portsrepo.ReportCache) BillingServiceOption {
	return func(s *billingService) {
		s.ReportCache = cache
	}
}

// NewBillingService creates a new billing ledger service with the provided options
func NewBillingService(store portsrepo.LedgerStore, clock ports.Clock, ids ports.IDGenerator, options ...BillingServiceOption) portssvc.BillingLedgerSvc {
	svc := &billingService{
		store: store,
		clock: clock,
		ids:   ids,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure billingService implements the BillingLedgerSvc interface
var _ portssvc.BillingLedgerSvc = (*billingService)(nil)

// chargePlan is who a session bills, how much, and under what description.
type chargePlan struct {
	fee         decimal.Decimal
	clientIDs   []string
	description string
}

// ResolveFee returns the session's own fee, else the default fee of its client or group.
func (s *billingService) ResolveFee(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) (*decimal.Decimal, error) {
	if session.Fee != nil {
		fee := *session.Fee
		return &fee, nil
	}

	switch session.Kind {
	case domain.SessionIndividual:
		client, err := tx.Clients().FindClientByID(ctx, *session.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client for fee: %w", err)
		}
		return client.DefaultFee, nil
	case domain.SessionGroup:
		group, err := tx.Groups().FindGroupByID(ctx, *session.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to load group for fee: %w", err)
		}
		return group.DefaultFee, nil
	default:
		return nil, nil
	}
}

// planCharges returns nil when the session bills nobody.
func (s *billingService) planCharges(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) (*chargePlan, error) {
	fee, err := s.ResolveFee(ctx, tx, session)
	if err != nil {
		return nil, err
	}
	if fee == nil || !fee.IsPositive() {
		s.LogDebug(ctx, "Session has no billable fee", slog.String("session_id", session.SessionID))
		return nil, nil
	}

	switch session.Kind {
	case domain.SessionIndividual:
		// Individual sessions bill the client even if archived since completion.
		if _, err := tx.Clients().FindClientByID(ctx, *session.ClientID); err != nil {
			return nil, fmt.Errorf("failed to load client for charge: %w", err)
		}
		return &chargePlan{
			fee:         *fee,
			clientIDs:   []string{*session.ClientID},
			description: "Session fee - " + session.ScheduledAt.Format("2006-01-02"),
		}, nil

	case domain.SessionGroup:
		group, err := tx.Groups().FindGroupByID(ctx, *session.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to load group for charge: %w", err)
		}
		members, err := tx.Clients().FindClientsByIDs(ctx, group.ClientIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load group members: %w", err)
		}
		plan := &chargePlan{fee: *fee, description: "Group session - " + group.Name}
		for _, id := range group.ClientIDs {
			member, ok := members[id]
			if !ok || !member.IsActive {
				s.LogDebug(ctx, "Skipping inactive or missing group member",
					slog.String("session_id", session.SessionID),
					slog.String("client_id", id))
				continue
			}
			plan.clientIDs = append(plan.clientIDs, id)
		}
		return plan, nil

	default:
		return nil, nil
	}
}

// chargeClient writes one charge and refreshes the client's balance using tx.
// A client already charged for the session yields (nil, nil).
func (s *billingService) chargeClient(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session, plan *chargePlan, clientID string, now time.Time) (*domain.Transaction, error) {
	existing, err := tx.Transactions().FindTransactionsBySessionID(ctx, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session transactions: %w", err)
	}
	for _, t := range existing {
		if t.IsChargeFor(session.SessionID, clientID) {
			return nil, nil
		}
	}

	sessionID := session.SessionID
	txn := domain.Transaction{
		TransactionID:    s.ids.NewID(),
		ClientID:         clientID,
		Amount:           plan.fee,
		Kind:             domain.Charge,
		OccurredAt:       now,
		Description:      plan.description,
		RelatedSessionID: &sessionID,
		CreatedAt:        now,
	}
	if err := tx.Transactions().SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.recomputeBalance(ctx, tx, clientID, now); err != nil {
		return nil, err
	}
	return &txn, nil
}

// recomputeBalance rewrites the cached balance from the client's transaction log.
func (s *billingService) recomputeBalance(ctx context.Context, tx portsrepo.LedgerStore, clientID string, now time.Time) error {
	txns, err := tx.Transactions().FindTransactionsByClientID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to load transactions for client %s: %w", clientID, err)
	}
	if err := tx.Clients().SetClientBalance(ctx, clientID, domain.BalanceOf(txns), now); err != nil {
		return fmt.Errorf("failed to update balance for client %s: %w", clientID, err)
	}
	return nil
}

// ChargeSessionInTx bills every planned client in the caller's unit of work.
func (s *billingService) ChargeSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, session domain.Session) ([]domain.Transaction, error) {
	plan, err := s.planCharges(ctx, tx, session)
	if err != nil || plan == nil {
		return []domain.Transaction{}, err
	}

	now := s.clock.Now()
	charges := make([]domain.Transaction, 0, len(plan.clientIDs))
	for _, clientID := range plan.clientIDs {
		txn, err := s.chargeClient(ctx, tx, session, plan, clientID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to charge client %s: %w", clientID, err)
		}
		if txn != nil {
			charges = append(charges, *txn)
		}
	}
	return charges, nil
}

// ChargeForSession bills a completed session, one unit of work per client.
func (s *billingService) ChargeForSession(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	session, err := s.store.Sessions().FindSessionByID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load session for charge", slog.String("session_id", sessionID))
		}
		return nil, err
	}
	if session.Status != domain.SessionCompleted {
		return nil, fmt.Errorf("%w: session %s is %s, only completed sessions are billed", apperrors.ErrConflict, sessionID, session.Status)
	}

	plan, err := s.planCharges(ctx, s.store, *session)
	if err != nil {
		s.LogError(ctx, err, "Failed to plan session charges", slog.String("session_id", sessionID))
		return nil, err
	}
	if plan == nil {
		return []domain.Transaction{}, nil
	}

	now := s.clock.Now()
	charges := make([]domain.Transaction, 0, len(plan.clientIDs))
	applied := 0
	for _, clientID := range plan.clientIDs {
		var created *domain.Transaction
		err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
			// The session may have been deleted since it was planned.
			current, err := tx.Sessions().FindSessionByID(ctx, sessionID)
			if err != nil {
				return err
			}
			if current.Status != domain.SessionCompleted {
				return fmt.Errorf("%w: session %s is %s, only completed sessions are billed", apperrors.ErrConflict, sessionID, current.Status)
			}
			txn, err := s.chargeClient(ctx, tx, *current, plan, clientID, now)
			created = txn
			return err
		})
		switch {
		case err == nil:
			applied++
			if created != nil {
				charges = append(charges, *created)
			}
		case errors.Is(err, apperrors.ErrAlreadyCharged):
			// A concurrent caller charged this client first.
			applied++
		default:
			s.LogError(ctx, err, "Failed to charge client for session",
				slog.String("session_id", sessionID),
				slog.String("client_id", clientID),
				slog.Int("applied", applied),
				slog.Int("planned", len(plan.clientIDs)))
			if len(charges) > 0 {
				metrics.LedgerTransactions.WithLabelValues(string(domain.Charge)).Add(float64(len(charges)))
				s.InvalidateReports(ctx)
			}
			if applied > 0 {
				metrics.PartialFanouts.Inc()
				return charges, fmt.Errorf("%w: %d of %d clients charged for session %s: %w",
					apperrors.ErrPartiallyApplied, applied, len(plan.clientIDs), sessionID, err)
			}
			return nil, fmt.Errorf("failed to charge client %s: %w", clientID, err)
		}
	}

	metrics.LedgerTransactions.WithLabelValues(string(domain.Charge)).Add(float64(len(charges)))
	if len(charges) > 0 {
		s.InvalidateReports(ctx)
	}
	s.LogInfo(ctx, "Session charged",
		slog.String("session_id", sessionID),
		slog.Int("created", len(charges)),
		slog.Int("planned", len(plan.clientIDs)))
	return charges, nil
}

// RecordPayment records a payment and lowers the client's balance in one unit of work.
func (s *billingService) RecordPayment(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}
	if strings.TrimSpace(description) == "" {
		description = defaultPaymentDescription
	}

	now := s.clock.Now()
	txn := domain.Transaction{
		TransactionID: s.ids.NewID(),
		ClientID:      clientID,
		Amount:        amount,
		Kind:          domain.Payment,
		OccurredAt:    now,
		Description:   description,
		CreatedAt:     now,
	}

	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		if _, err := tx.Clients().FindClientByID(ctx, clientID); err != nil {
			return err
		}
		if err := tx.Transactions().SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return s.recomputeBalance(ctx, tx, clientID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to record payment", slog.String("client_id", clientID))
		}
		return nil, err
	}

	metrics.LedgerTransactions.WithLabelValues(string(domain.Payment)).Inc()
	s.InvalidateReports(ctx)
	s.LogInfo(ctx, "Payment recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("client_id", clientID),
		slog.String("amount", amount.String()))
	return &txn, nil
}

// DeleteTransaction reverses a transaction. Reversing is the only correction.
func (s *billingService) DeleteTransaction(ctx context.Context, transactionID string) error {
	var reversed *domain.Transaction
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		txn, err := tx.Transactions().FindTransactionByID(ctx, transactionID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		deleted, err := tx.Transactions().DeleteTransaction(ctx, transactionID)
		if err != nil || !deleted {
			return err
		}
		reversed = txn
		return s.recomputeBalance(ctx, tx, txn.ClientID, s.clock.Now())
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if reversed == nil {
		s.LogDebug(ctx, "Transaction already gone", slog.String("transaction_id", transactionID))
		return nil
	}

	metrics.LedgerReversals.Inc()
	s.InvalidateReports(ctx)
	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("client_id", reversed.ClientID),
		slog.String("kind", string(reversed.Kind)))
	return nil
}

// ReverseSessionInTx deletes the session's transactions in the caller's unit of work.
func (s *billingService) ReverseSessionInTx(ctx context.Context, tx portsrepo.LedgerStore, sessionID string) (int, error) {
	txns, err := tx.Transactions().FindTransactionsBySessionID(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load session transactions: %w", err)
	}

	reversed := 0
	touched := make(map[string]struct{})
	var clientOrder []string
	for _, t := range txns {
		deleted, err := tx.Transactions().DeleteTransaction(ctx, t.TransactionID)
		if err != nil {
			return 0, fmt.Errorf("failed to delete transaction %s: %w", t.TransactionID, err)
		}
		if !deleted {
			continue
		}
		reversed++
		if _, ok := touched[t.ClientID]; !ok {
			touched[t.ClientID] = struct{}{}
			clientOrder = append(clientOrder, t.ClientID)
		}
	}

	now := s.clock.Now()
	for _, clientID := range clientOrder {
		if err := s.recomputeBalance(ctx, tx, clientID, now); err != nil {
			return 0, err
		}
	}
	return reversed, nil
}

// RecordExpense records a practice expense. Expenses never touch a client balance.
func (s *billingService) RecordExpense(ctx context.Context, amount decimal.Decimal, description, category string) (*domain.Expense, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: expense description is required", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	expense := domain.Expense{
		ExpenseID:   s.ids.NewID(),
		Amount:      amount,
		OccurredAt:  now,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		CreatedAt:   now,
	}
	if err := s.store.Expenses().SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense")
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.InvalidateReports(ctx)
	s.LogInfo(ctx, "Expense recorded",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("amount", amount.String()))
	return &expense, nil
}

func (s *billingService) DeleteExpense(ctx context.Context, expenseID string) error {
	deleted, err := s.store.Expenses().DeleteExpense(ctx, expenseID)
	if err != nil {
		s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	if deleted {
		s.InvalidateReports(ctx)
		s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	}
	return nil
}

// ReconcileBalances recomputes every client balance and corrects drift.
func (s *billingService) ReconcileBalances(ctx context.Context) (*domain.ReconciliationReport, error) {
	report := &domain.ReconciliationReport{Drifted: []domain.BalanceDrift{}}
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		clients, err := tx.Clients().ListClients(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		now := s.clock.Now()
		for _, c := range clients {
			report.ClientsChecked++
			txns, err := tx.Transactions().FindTransactionsByClientID(ctx, c.ClientID)
			if err != nil {
				return fmt.Errorf("failed to load transactions for client %s: %w", c.ClientID, err)
			}
			actual := domain.BalanceOf(txns)
			if actual.Equal(c.Balance) {
				continue
			}
			report.Drifted = append(report.Drifted, domain.BalanceDrift{ClientID: c.ClientID, Cached: c.Balance, Actual: actual})
			if err := tx.Clients().SetClientBalance(ctx, c.ClientID, actual, now); err != nil {
				return fmt.Errorf("failed to correct balance for client %s: %w", c.ClientID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Balance reconciliation failed")
		return nil, err
	}

	if len(report.Drifted) > 0 {
		metrics.BalanceDrift.Add(float64(len(report.Drifted)))
		s.InvalidateReports(ctx)
		s.GetLogger(ctx).Warn("Corrected drifted client balances",
			slog.Int("clients_checked", report.ClientsChecked),
			slog.Int("drifted", len(report.Drifted)))
	} else {
		s.LogInfo(ctx, "Client balances reconciled", slog.Int("clients_checked", report.ClientsChecked))
	}
	return report, nil
}

func (s *billingService) ListClientTransactions(ctx context.Context, clientID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if _, err := s.store.Clients().FindClientByID(ctx, clientID); err != nil {
		return nil, nil, err
	}
	txns, next, err := s.store.Transactions().ListTransactionsByClientID(ctx, clientID, limit, nextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list client transactions", slog.String("client_id", clientID))
		}
		return nil, nil, fmt.Errorf("failed to list transactions for client %s: %w", clientID, err)
	}
	return txns, next, nil
}
