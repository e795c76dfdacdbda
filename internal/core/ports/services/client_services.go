package services

import (
	"context"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// ClientSvc defines client profile management. None of these operations touch a balance.
type ClientSvc interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, includeArchived bool) ([]domain.Client, error)
	UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest) (*domain.Client, error)

	// ArchiveClient marks a client inactive. Clients are never hard-deleted.
	ArchiveClient(ctx context.Context, clientID string) error
}

// GroupSvc defines group management. Membership changes never touch past transactions.
type GroupSvc interface {
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error)
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)
	ListGroups(ctx context.Context, includeArchived bool) ([]domain.Group, error)
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest) (*domain.Group, error)
}
