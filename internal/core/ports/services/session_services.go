package services

import (
	"context"
	"time"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// SessionReaderSvc defines read operations for sessions
type SessionReaderSvc interface {
	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// ListSessions retrieves sessions scheduled in [from, to). A zero bound is open.
	ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error)
}

// SessionLifecycleSvc defines the session state machine
type SessionLifecycleSvc interface {
	// ScheduleSessions creates one session, or a recurring batch when req.Recurrence is set.
	// All sessions of one call are persisted together or not at all.
	ScheduleSessions(ctx context.Context, req dto.ScheduleSessionRequest) ([]domain.Session, error)

	// CancelSession moves a scheduled session to cancelled. Cancelling a cancelled
	// session returns it unchanged.
	CancelSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// CompleteSession moves a scheduled session to completed and bills it in the same unit of work.
	CompleteSession(ctx context.Context, sessionID string, req dto.CompleteSessionRequest) (*domain.CompletionResult, error)

	// DeleteSession reverses every transaction tagged with sessionID and removes the session.
	// Deleting an unknown session is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionSchedulerSvc combines all session-related service interfaces
type SessionSchedulerSvc interface {
	SessionReaderSvc
	SessionLifecycleSvc
}
