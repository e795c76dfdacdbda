package domain

import (
	"github.com/shopspring/decimal"
)

// Client represents a counseling client. Balance is positive when the client owes money.
type Client struct {
	ClientID    string           `json:"clientID" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email" validate:"omitempty,email"`
	Notes       string           `json:"notes"`
	DefaultFee  *decimal.Decimal `json:"defaultFee,omitempty"` // Default per-session price
	Balance     decimal.Decimal  `json:"balance"`              // Materialized from the transaction log
	IsActive    bool             `json:"isActive"`             // False once archived
	AuditFields
}

// Validate checks the client's shape. Store adapters call it on every load.
func (c Client) Validate() error {
	if err := validateStruct("client", c); err != nil {
		return err
	}
	return requireNonNegative("client", "defaultFee", c.DefaultFee)
}

// ClientProfile holds the fields a practitioner may edit directly. It never carries a balance.
type ClientProfile struct {
	Name       *string
	Phone      *string
	Email      *string
	Notes      *string
	DefaultFee *decimal.Decimal
	IsActive   *bool
}

// Apply copies the provided profile fields onto the client and reports whether anything changed.
func (p ClientProfile) Apply(c *Client) bool {
	changed := false
	if p.Name != nil {
		c.Name = *p.Name
		changed = true
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
		changed = true
	}
	if p.Email != nil {
		c.Email = *p.Email
		changed = true
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
		changed = true
	}
	if p.DefaultFee != nil {
		fee := *p.DefaultFee
		c.DefaultFee = &fee
		changed = true
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
		changed = true
	}
	return changed
}
