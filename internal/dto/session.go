package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// ScheduleSessionRequest defines the data needed to schedule one session or a recurring batch.
type ScheduleSessionRequest struct {
	Kind            domain.SessionKind `json:"kind" binding:"required,oneof=individual group other"`
	ClientID        *string            `json:"clientID"`
	GroupID         *string            `json:"groupID"`
	Title           string             `json:"title"`
	ScheduledAt     time.Time          `json:"scheduledAt" binding:"required"`
	DurationMinutes int                `json:"durationMinutes"`
	Notes           string             `json:"notes"`
	Fee             *decimal.Decimal   `json:"fee"`        // Optional billed-fee override
	Recurrence      *domain.Recurrence `json:"recurrence"` // Optional; nil schedules a single session
}

// CompleteSessionRequest carries the session note and an optional fee override.
type CompleteSessionRequest struct {
	Notes string           `json:"notes"`
	Fee   *decimal.Decimal `json:"fee"`
}

// ListSessionsParams defines query parameters for listing sessions.
type ListSessionsParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}

// ScheduleSessionResponse wraps the sessions created by one schedule call.
type ScheduleSessionResponse struct {
	Sessions []domain.Session `json:"sessions"`
}

// ListSessionsResponse wraps a list of sessions.
type ListSessionsResponse struct {
	Sessions []domain.Session `json:"sessions"`
}
