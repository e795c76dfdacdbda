package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
)

type groupRepo struct {
	q querier
}

var _ portsrepo.GroupRepository = groupRepo{}

func (r groupRepo) SaveGroup(ctx context.Context, group domain.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO client_groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.q.Exec(ctx, query,
		group.GroupID,
		group.Name,
		membersOrEmpty(group.ClientIDs),
		group.Notes,
		nullDecimal(group.DefaultFee),
		group.IsActive,
		group.CreatedAt,
		group.LastUpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "group", group.GroupID)
	}
	return nil
}

func (r groupRepo) UpdateGroup(ctx context.Context, group domain.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	query := `
		UPDATE client_groups
		SET name = $2, client_ids = $3, notes = $4, default_fee = $5, is_active = $6, last_updated_at = $7
		WHERE group_id = $1;`
	tag, err := r.q.Exec(ctx, query,
		group.GroupID,
		group.Name,
		membersOrEmpty(group.ClientIDs),
		group.Notes,
		nullDecimal(group.DefaultFee),
		group.IsActive,
		group.LastUpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "group", group.GroupID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("group", group.GroupID)
	}
	return nil
}

func (r groupRepo) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM client_groups WHERE group_id = $1;`
	g, err := scanGroup(r.q.QueryRow(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("group", groupID)
		}
		return nil, fmt.Errorf("failed to find group by ID %s: %w", groupID, err)
	}
	return &g, nil
}

func (r groupRepo) ListGroups(ctx context.Context, includeArchived bool) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM client_groups WHERE is_active OR $1 ORDER BY name, group_id;`
	rows, err := r.q.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups, err := collect(rows, scanGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}
	return groups, nil
}

// membersOrEmpty keeps a nil slice from being written as SQL NULL.
func membersOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
