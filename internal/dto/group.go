package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// CreateGroupRequest defines the data needed to create a group.
type CreateGroupRequest struct {
	Name       string           `json:"name" binding:"required"`
	ClientIDs  []string         `json:"clientIDs"`
	Notes      string           `json:"notes"`
	DefaultFee *decimal.Decimal `json:"defaultFee"`
}

// UpdateGroupRequest defines the fields allowed for updating a group.
// Membership changes never touch past transactions.
type UpdateGroupRequest struct {
	Name       *string          `json:"name"`
	ClientIDs  *[]string        `json:"clientIDs"`
	Notes      *string          `json:"notes"`
	DefaultFee *decimal.Decimal `json:"defaultFee"`
	IsActive   *bool            `json:"isActive"`
}

// ListGroupsParams defines query parameters for listing groups.
type ListGroupsParams struct {
	IncludeArchived bool `form:"includeArchived"`
}

// ListGroupsResponse wraps the list of groups.
type ListGroupsResponse struct {
	Groups []domain.Group `json:"groups"`
}
