package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

type clientRepo struct {
	q querier
}

var _ portsrepo.ClientRepository = clientRepo{}

const (
	insertClientQuery = `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	updateClientProfileQuery = `
		UPDATE clients
		SET name = $2, phone = $3, email = $4, notes = $5, default_fee = $6, is_active = $7, last_updated_at = $8
		WHERE client_id = $1;`

	setClientBalanceQuery = `
		UPDATE clients SET balance = $2, last_updated_at = $3 WHERE client_id = $1;`

	lockClientQuery = `SELECT client_id FROM clients WHERE client_id = $1 FOR UPDATE;`
)

func (r clientRepo) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1;`
	c, err := scanClient(r.q.QueryRow(ctx, query, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("client", clientID)
		}
		return nil, fmt.Errorf("failed to find client by ID %s: %w", clientID, err)
	}
	return &c, nil
}

func (r clientRepo) FindClientsByIDs(ctx context.Context, clientIDs []string) (map[string]domain.Client, error) {
	out := make(map[string]domain.Client, len(clientIDs))
	if len(clientIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = ANY($1);`
	rows, err := r.q.Query(ctx, query, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients by IDs: %w", err)
	}
	clients, err := collect(rows, scanClient)
	if err != nil {
		return nil, fmt.Errorf("failed to scan clients: %w", err)
	}
	for _, c := range clients {
		out[c.ClientID] = c
	}
	return out, nil
}

func (r clientRepo) ListClients(ctx context.Context, includeArchived bool) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE is_active OR $1 ORDER BY name, client_id;`
	rows, err := r.q.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	clients, err := collect(rows, scanClient)
	if err != nil {
		return nil, fmt.Errorf("failed to scan clients: %w", err)
	}
	return clients, nil
}

func (r clientRepo) SaveClient(ctx context.Context, client domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx, insertClientQuery,
		client.ClientID,
		client.Name,
		client.Phone,
		client.Email,
		client.Notes,
		nullDecimal(client.DefaultFee),
		client.Balance,
		client.IsActive,
		client.CreatedAt,
		client.LastUpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "client", client.ClientID)
	}
	return nil
}

func (r clientRepo) UpdateClientProfile(ctx context.Context, client domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, updateClientProfileQuery,
		client.ClientID,
		client.Name,
		client.Phone,
		client.Email,
		client.Notes,
		nullDecimal(client.DefaultFee),
		client.IsActive,
		client.LastUpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "client", client.ClientID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("client", client.ClientID)
	}
	return nil
}

func (r clientRepo) SetClientBalance(ctx context.Context, clientID string, balance decimal.Decimal, now time.Time) error {
	tag, err := r.q.Exec(ctx, setClientBalanceQuery, clientID, balance, now)
	if err != nil {
		return fmt.Errorf("failed to set balance for client %s: %w", clientID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("client", clientID)
	}
	return nil
}

// lockClient takes a row lock on the client for the rest of the enclosing
// transaction so balance recomputations for one client run one at a time.
func lockClient(ctx context.Context, q querier, clientID string) error {
	var id string
	if err := q.QueryRow(ctx, lockClientQuery, clientID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("client", clientID)
		}
		return fmt.Errorf("failed to lock client %s: %w", clientID, err)
	}
	return nil
}
