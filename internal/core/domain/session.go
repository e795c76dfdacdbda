package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
)

// SessionKind says who a session is held with.
type SessionKind string

const (
	SessionIndividual SessionKind = "individual"
	SessionGroup      SessionKind = "group"
	SessionOther      SessionKind = "other"
)

// SessionStatus is the lifecycle state of a session.
// scheduled -> completed and scheduled -> cancelled are the only transitions.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is a single appointment.
type Session struct {
	SessionID       string           `json:"sessionID" validate:"required"`
	Kind            SessionKind      `json:"kind" validate:"required,oneof=individual group other"`
	ClientID        *string          `json:"clientID,omitempty"`
	GroupID         *string          `json:"groupID,omitempty"`
	Title           string           `json:"title,omitempty"`
	ScheduledAt     time.Time        `json:"scheduledAt" validate:"required"`
	DurationMinutes int              `json:"durationMinutes" validate:"gt=0"`
	Status          SessionStatus    `json:"status" validate:"required,oneof=scheduled completed cancelled"`
	Notes           string           `json:"notes,omitempty"`
	Fee             *decimal.Decimal `json:"fee,omitempty"` // Billed amount; set at completion unless overridden earlier
	AuditFields
}

// Validate checks the session's shape, including the kind/reference pairing.
func (s Session) Validate() error {
	if err := validateStruct("session", s); err != nil {
		return err
	}
	if err := ValidateSessionTarget(s.Kind, s.ClientID, s.GroupID, s.Title); err != nil {
		return err
	}
	return requireNonNegative("session", "fee", s.Fee)
}

// ValidateSessionTarget enforces that exactly the reference matching kind is set.
func ValidateSessionTarget(kind SessionKind, clientID, groupID *string, title string) error {
	hasClient := clientID != nil && *clientID != ""
	hasGroup := groupID != nil && *groupID != ""
	hasTitle := strings.TrimSpace(title) != ""

	switch kind {
	case SessionIndividual:
		if !hasClient || hasGroup {
			return fmt.Errorf("%w: individual session requires clientID and no groupID", apperrors.ErrValidation)
		}
	case SessionGroup:
		if !hasGroup || hasClient {
			return fmt.Errorf("%w: group session requires groupID and no clientID", apperrors.ErrValidation)
		}
	case SessionOther:
		if !hasTitle || hasClient || hasGroup {
			return fmt.Errorf("%w: other session requires a title and no clientID or groupID", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown session kind %q", apperrors.ErrValidation, kind)
	}
	return nil
}

// Recurrence describes a batch of sessions spaced a fixed number of calendar days apart.
type Recurrence struct {
	Count        int `json:"count"`
	IntervalDays int `json:"intervalDays"`
}

// MaxRecurrenceCount caps how many sessions one schedule call may generate.
const MaxRecurrenceCount = 104

// Validate checks the recurrence bounds.
func (r Recurrence) Validate() error {
	if r.Count < 1 || r.Count > MaxRecurrenceCount {
		return fmt.Errorf("%w: recurrence count must be between 1 and %d, got %d", apperrors.ErrValidation, MaxRecurrenceCount, r.Count)
	}
	if r.IntervalDays <= 0 {
		return fmt.Errorf("%w: recurrence intervalDays must be positive, got %d", apperrors.ErrValidation, r.IntervalDays)
	}
	return nil
}

// Occurrences returns the instants base, base+d, ..., base+(n-1)d.
// Days are calendar days so wall-clock time is kept across DST changes.
func (r Recurrence) Occurrences(base time.Time) []time.Time {
	out := make([]time.Time, r.Count)
	for i := 0; i < r.Count; i++ {
		out[i] = base.AddDate(0, 0, i*r.IntervalDays)
	}
	return out
}

// CompletionResult is the outcome of completing a session. Charges is empty
// for an unbillable completion.
type CompletionResult struct {
	Session Session       `json:"session"`
	Charges []Transaction `json:"charges"`
}
