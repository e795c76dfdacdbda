package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// CreateClientRequest defines the data needed to create a new client.
type CreateClientRequest struct {
	Name       string           `json:"name" binding:"required"`
	Phone      string           `json:"phone"`
	Email      string           `json:"email" binding:"omitempty,email"`
	Notes      string           `json:"notes"`
	DefaultFee *decimal.Decimal `json:"defaultFee"`
}

// UpdateClientRequest defines the profile fields allowed for updating a client.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateClientRequest struct {
	Name       *string          `json:"name"`
	Phone      *string          `json:"phone"`
	Email      *string          `json:"email" binding:"omitempty,email"`
	Notes      *string          `json:"notes"`
	DefaultFee *decimal.Decimal `json:"defaultFee"`
	IsActive   *bool            `json:"isActive"`
}

// ToClientProfile converts the request into a domain profile patch.
func (r UpdateClientRequest) ToClientProfile() domain.ClientProfile {
	return domain.ClientProfile{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Notes:      r.Notes,
		DefaultFee: r.DefaultFee,
		IsActive:   r.IsActive,
	}
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	IncludeArchived bool `form:"includeArchived"`
}

// ListClientsResponse wraps the list of clients.
type ListClientsResponse struct {
	Clients []domain.Client `json:"clients"`
}
