package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
	"github.com/SscSPs/practice_ledger_app/internal/platform/metrics"
)

// schedulerService implements the SessionSchedulerSvc interface
type schedulerService struct {
	BaseService
	store   portsrepo.LedgerStore
	billing portssvc.BillingLedgerTxSupport
	clock   ports.Clock
	ids     ports.IDGenerator
}

// SchedulerServiceOption is a functional option for configuring the scheduler service
type SchedulerServiceOption func(*schedulerService)

// WithSchedulerReportCache sets the cache invalidated after session writes.
func WithSchedulerReportCache(cache portsrepo.ReportCache) SchedulerServiceOption {
	return func(s *schedulerService) {
		s.ReportCache = cache
	}
}

// NewSchedulerService creates a new session scheduler with the provided options
func NewSchedulerService(store portsrepo.LedgerStore, billing portssvc.BillingLedgerTxSupport, clock ports.Clock, ids ports.IDGenerator, options ...SchedulerServiceOption) portssvc.SessionSchedulerSvc {
	svc := &schedulerService{
		store:   store,
		billing: billing,
		clock:   clock,
		ids:     ids,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure schedulerService implements the SessionSchedulerSvc interface
var _ portssvc.SessionSchedulerSvc = (*schedulerService)(nil)

// ScheduleSessions creates a session, or one per recurrence occurrence, in a single unit of work.
func (s *schedulerService) ScheduleSessions(ctx context.Context, req dto.ScheduleSessionRequest) ([]domain.Session, error) {
	if err := domain.ValidateSessionTarget(req.Kind, req.ClientID, req.GroupID, req.Title); err != nil {
		return nil, err
	}
	if req.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduledAt is required", apperrors.ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: durationMinutes must be positive, got %d", apperrors.ErrValidation, req.DurationMinutes)
	}
	if req.Fee != nil && req.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: fee must not be negative", apperrors.ErrValidation)
	}
	recurrence := domain.Recurrence{Count: 1, IntervalDays: 1}
	if req.Recurrence != nil {
		recurrence = *req.Recurrence
	}
	if err := recurrence.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	occurrences := recurrence.Occurrences(req.ScheduledAt)
	sessions := make([]domain.Session, 0, len(occurrences))
	for _, at := range occurrences {
		session := domain.Session{
			SessionID:       s.ids.NewID(),
			Kind:            req.Kind,
			Title:           req.Title,
			ScheduledAt:     at,
			DurationMinutes: req.DurationMinutes,
			Status:          domain.SessionScheduled,
			Notes:           req.Notes,
			AuditFields:     domain.NewAuditFields(now),
		}
		if req.ClientID != nil && *req.ClientID != "" {
			clientID := *req.ClientID
			session.ClientID = &clientID
		}
		if req.GroupID != nil && *req.GroupID != "" {
			groupID := *req.GroupID
			session.GroupID = &groupID
		}
		if req.Fee != nil {
			fee := *req.Fee
			session.Fee = &fee
		}
		sessions = append(sessions, session)
	}

	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		if err := s.checkTarget(ctx, tx, req.Kind, req.ClientID, req.GroupID); err != nil {
			return err
		}
		return tx.Sessions().SaveSessions(ctx, sessions)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to schedule sessions", slog.Int("count", len(sessions)))
		}
		return nil, err
	}

	metrics.SessionsScheduled.Add(float64(len(sessions)))
	s.InvalidateReports(ctx)
	s.LogInfo(ctx, "Sessions scheduled",
		slog.String("kind", string(req.Kind)),
		slog.Int("count", len(sessions)),
		slog.String("first_session_id", sessions[0].SessionID))
	return sessions, nil
}

// checkTarget verifies the referenced client or group exists and is active.
func (s *schedulerService) checkTarget(ctx context.Context, tx portsrepo.LedgerStore, kind domain.SessionKind, clientID, groupID *string) error {
	switch kind {
	case domain.SessionIndividual:
		client, err := tx.Clients().FindClientByID(ctx, *clientID)
		if err != nil {
			return err
		}
		if !client.IsActive {
			return fmt.Errorf("%w: client %s is archived", apperrors.ErrValidation, client.ClientID)
		}
	case domain.SessionGroup:
		group, err := tx.Groups().FindGroupByID(ctx, *groupID)
		if err != nil {
			return err
		}
		if !group.IsActive {
			return fmt.Errorf("%w: group %s is archived", apperrors.ErrValidation, group.GroupID)
		}
	}
	return nil
}

// CancelSession moves a scheduled session to cancelled. It never bills.
func (s *schedulerService) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var result *domain.Session
	transitioned := false
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		session, err := tx.Sessions().FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		switch session.Status {
		case domain.SessionCancelled:
			result = session
			return nil
		case domain.SessionCompleted:
			return fmt.Errorf("session %s is completed: %w", sessionID, apperrors.ErrTerminalState)
		}

		updated := *session
		updated.Status = domain.SessionCancelled
		updated.LastUpdatedAt = s.clock.Now()
		if err := tx.Sessions().TransitionSession(ctx, domain.SessionScheduled, updated); err != nil {
			return err
		}
		result = &updated
		transitioned = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to cancel session", slog.String("session_id", sessionID))
		}
		return nil, err
	}

	if transitioned {
		metrics.SessionTransitions.WithLabelValues(string(domain.SessionCancelled)).Inc()
		s.LogInfo(ctx, "Session cancelled", slog.String("session_id", sessionID))
	}
	return result, nil
}

// CompleteSession transitions the session and writes its charges in one unit of work.
// The conditional transition out of scheduled is what keeps a session from being billed twice.
func (s *schedulerService) CompleteSession(ctx context.Context, sessionID string, req dto.CompleteSessionRequest) (*domain.CompletionResult, error) {
	if req.Fee != nil && req.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: fee must not be negative", apperrors.ErrValidation)
	}

	var result *domain.CompletionResult
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		session, err := tx.Sessions().FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionScheduled {
			return fmt.Errorf("session %s is %s: %w", sessionID, session.Status, apperrors.ErrTerminalState)
		}

		updated := *session
		if req.Fee != nil {
			fee := *req.Fee
			updated.Fee = &fee
		}
		fee, err := s.billing.ResolveFee(ctx, tx, updated)
		if err != nil {
			return err
		}
		updated.Fee = fee
		if req.Notes != "" {
			updated.Notes = req.Notes
		}
		updated.Status = domain.SessionCompleted
		updated.LastUpdatedAt = s.clock.Now()

		if err := tx.Sessions().TransitionSession(ctx, domain.SessionScheduled, updated); err != nil {
			return err
		}
		charges, err := s.billing.ChargeSessionInTx(ctx, tx, updated)
		if err != nil {
			return err
		}
		result = &domain.CompletionResult{Session: updated, Charges: charges}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to complete session", slog.String("session_id", sessionID))
		}
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(domain.SessionCompleted)).Inc()
	metrics.LedgerTransactions.WithLabelValues(string(domain.Charge)).Add(float64(len(result.Charges)))
	s.InvalidateReports(ctx)
	if len(result.Charges) == 0 {
		s.LogInfo(ctx, "Session completed without billing", slog.String("session_id", sessionID))
	} else {
		s.LogInfo(ctx, "Session completed",
			slog.String("session_id", sessionID),
			slog.Int("charges", len(result.Charges)),
			slog.String("fee", result.Session.Fee.String()))
	}
	return result, nil
}

// DeleteSession reverses the session's transactions and removes it. Transactions are
// reversed even if the session row is already gone.
func (s *schedulerService) DeleteSession(ctx context.Context, sessionID string) error {
	var reversed int
	var deleted bool
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerStore) error {
		n, err := s.billing.ReverseSessionInTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		reversed = n
		deleted, err = tx.Sessions().DeleteSession(ctx, sessionID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete session", slog.String("session_id", sessionID))
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	if !deleted && reversed == 0 {
		s.LogDebug(ctx, "Session already gone", slog.String("session_id", sessionID))
		return nil
	}
	metrics.LedgerReversals.Add(float64(reversed))
	s.InvalidateReports(ctx)
	s.LogInfo(ctx, "Session deleted",
		slog.String("session_id", sessionID),
		slog.Int("reversed_transactions", reversed))
	return nil
}

func (s *schedulerService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.Sessions().FindSessionByID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find session", slog.String("session_id", sessionID))
		}
		return nil, err
	}
	return session, nil
}

func (s *schedulerService) ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return nil, fmt.Errorf("%w: to must be after from", apperrors.ErrValidation)
	}
	sessions, err := s.store.Sessions().ListSessions(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list sessions")
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
