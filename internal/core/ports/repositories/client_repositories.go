package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClientReader defines read operations for client data
type ClientReader interface {
	// FindClientByID retrieves a client by ID. Returns apperrors.ErrNotFound if absent.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClientsByIDs retrieves the clients that exist among ids, keyed by ID.
	FindClientsByIDs(ctx context.Context, clientIDs []string) (map[string]domain.Client, error)

	// ListClients lists clients ordered by name.
	ListClients(ctx context.Context, includeArchived bool) ([]domain.Client, error)
}

// ClientWriter defines write operations for client data
type ClientWriter interface {
	// SaveClient persists a new client.
	SaveClient(ctx context.Context, client domain.Client) error

	// UpdateClientProfile writes profile fields only. The balance column is never touched.
	UpdateClientProfile(ctx context.Context, client domain.Client) error

	// SetClientBalance overwrites the materialized balance.
	SetClientBalance(ctx context.Context, clientID string, balance decimal.Decimal, now time.Time) error
}

// ClientRepository combines client reads and writes
type ClientRepository interface {
	ClientReader
	ClientWriter
}
