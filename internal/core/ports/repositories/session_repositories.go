package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// SessionReader defines read operations for session data
type SessionReader interface {
	// FindSessionByID retrieves a session. Returns apperrors.ErrNotFound if absent.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error)

	// ListSessions lists sessions with ScheduledAt in [from, to), ordered by ScheduledAt.
	// A zero bound is open.
	ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error)
}

// SessionWriter defines write operations for session data
type SessionWriter interface {
	// SaveSessions persists new sessions.
	SaveSessions(ctx context.Context, sessions []domain.Session) error

	// TransitionSession writes the status, notes and fee of updated, but only if the
	// stored status still equals from. Returns apperrors.ErrTerminalState when it
	// does not and apperrors.ErrNotFound when the session is gone.
	TransitionSession(ctx context.Context, from domain.SessionStatus, updated domain.Session) error

	// DeleteSession hard-deletes a session and reports whether a row was removed.
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

// SessionRepository combines session reads and writes
type SessionRepository interface {
	SessionReader
	SessionWriter
}
