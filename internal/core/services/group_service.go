package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// groupService implements the GroupSvc interface
type groupService struct {
	BaseService
	groupRepo  portsrepo.GroupRepository
	clientRepo portsrepo.ClientReader
	clock      ports.Clock
	ids        ports.IDGenerator
}

// NewGroupService creates a new group service.
func NewGroupService(groupRepo portsrepo.GroupRepository, clientRepo portsrepo.ClientReader, clock ports.Clock, ids ports.IDGenerator) portssvc.GroupSvc {
	return &groupService{
		groupRepo:  groupRepo,
		clientRepo: clientRepo,
		clock:      clock,
		ids:        ids,
	}
}

var _ portssvc.GroupSvc = (*groupService)(nil)

// checkMembers normalizes member IDs and rejects unknown clients.
func (s *groupService) checkMembers(ctx context.Context, ids []string) ([]string, error) {
	members := domain.NormalizeMembers(ids)
	if len(members) == 0 {
		return members, nil
	}
	found, err := s.clientRepo.FindClientsByIDs(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}
	var missing []string
	for _, id := range members {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown clients %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return members, nil
}

func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*domain.Group, error) {
	members, err := s.checkMembers(ctx, req.ClientIDs)
	if err != nil {
		return nil, err
	}
	group := domain.Group{
		GroupID:     s.ids.NewID(),
		Name:        strings.TrimSpace(req.Name),
		ClientIDs:   members,
		Notes:       req.Notes,
		DefaultFee:  req.DefaultFee,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(s.clock.Now()),
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save group")
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	s.LogInfo(ctx, "Group created",
		slog.String("group_id", group.GroupID),
		slog.Int("members", len(group.ClientIDs)))
	return &group, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, includeArchived bool) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroups(ctx, includeArchived)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups")
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if groups == nil {
		return []domain.Group{}, nil
	}
	return groups, nil
}

// UpdateGroup edits a group. New membership applies to future charges only.
func (s *groupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest) (*domain.Group, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = strings.TrimSpace(*req.Name)
	}
	if req.ClientIDs != nil {
		members, err := s.checkMembers(ctx, *req.ClientIDs)
		if err != nil {
			return nil, err
		}
		group.ClientIDs = members
	}
	if req.Notes != nil {
		group.Notes = *req.Notes
	}
	if req.DefaultFee != nil {
		fee := *req.DefaultFee
		group.DefaultFee = &fee
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	group.LastUpdatedAt = s.clock.Now()
	if err := group.Validate(); err != nil {
		return nil, err
	}

	if err := s.groupRepo.UpdateGroup(ctx, *group); err != nil {
		s.LogError(ctx, err, "Failed to update group", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to update group %s: %w", groupID, err)
	}

	s.LogInfo(ctx, "Group updated",
		slog.String("group_id", groupID),
		slog.Int("members", len(group.ClientIDs)))
	return group, nil
}
