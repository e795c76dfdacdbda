package repositories

import (
	"context"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	SaveGroup(ctx context.Context, group domain.Group) error
	UpdateGroup(ctx context.Context, group domain.Group) error
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)
	ListGroups(ctx context.Context, includeArchived bool) ([]domain.Group, error)
}
