package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

type sessionRepo struct {
	q querier
}

var _ portsrepo.SessionRepository = sessionRepo{}

const (
	insertSessionQuery = `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	// transitionSessionQuery only matches while the stored status is still the expected one.
	transitionSessionQuery = `
		UPDATE sessions
		SET status = $3, notes = $4, fee = $5, last_updated_at = $6
		WHERE session_id = $1 AND status = $2;`
)

func (r sessionRepo) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1;`
	s, err := scanSession(r.q.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("session", sessionID)
		}
		return nil, fmt.Errorf("failed to find session by ID %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r sessionRepo) ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ($1::timestamptz IS NULL OR scheduled_at >= $1)
		  AND ($2::timestamptz IS NULL OR scheduled_at < $2)
		ORDER BY scheduled_at, session_id;`
	rows, err := r.q.Query(ctx, query, optionalTime(from), optionalTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions, err := collect(rows, scanSession)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return sessions, nil
}

// SaveSessions inserts every session in one batch. Outside a transaction pgx
// runs the batch as a single implicit transaction.
func (r sessionRepo) SaveSessions(ctx context.Context, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return err
		}
		batch.Queue(insertSessionQuery,
			s.SessionID,
			string(s.Kind),
			s.ClientID,
			s.GroupID,
			s.Title,
			s.ScheduledAt,
			s.DurationMinutes,
			string(s.Status),
			s.Notes,
			nullDecimal(s.Fee),
			s.CreatedAt,
			s.LastUpdatedAt,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	for _, s := range sessions {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteError(err, "session", s.SessionID)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute session batch: %w", err)
	}
	return nil
}

func (r sessionRepo) TransitionSession(ctx context.Context, from domain.SessionStatus, updated domain.Session) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, transitionSessionQuery,
		updated.SessionID,
		string(from),
		string(updated.Status),
		updated.Notes,
		nullDecimal(updated.Fee),
		updated.LastUpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "session", updated.SessionID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.q.QueryRow(ctx, `SELECT status FROM sessions WHERE session_id = $1;`, updated.SessionID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound("session", updated.SessionID)
	}
	if err != nil {
		return fmt.Errorf("failed to read status of session %s: %w", updated.SessionID, err)
	}
	return fmt.Errorf("session %s is %s: %w", updated.SessionID, current, apperrors.ErrTerminalState)
}

func (r sessionRepo) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1;`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// optionalTime maps the zero time to SQL NULL.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
