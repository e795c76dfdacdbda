package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Group is a set of clients that attend group sessions together.
type Group struct {
	GroupID    string           `json:"groupID" validate:"required"`
	Name       string           `json:"name" validate:"required"`
	ClientIDs  []string         `json:"clientIDs" validate:"dive,required"`
	Notes      string           `json:"notes"`
	DefaultFee *decimal.Decimal `json:"defaultFee,omitempty"` // Per-member price
	IsActive   bool             `json:"isActive"`
	AuditFields
}

// Validate checks the group's shape.
func (g Group) Validate() error {
	if err := validateStruct("group", g); err != nil {
		return err
	}
	return requireNonNegative("group", "defaultFee", g.DefaultFee)
}

// NormalizeMembers collapses duplicate member IDs and sorts them for stable storage.
func NormalizeMembers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasMember reports whether clientID belongs to the group.
func (g Group) HasMember(clientID string) bool {
	for _, id := range g.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}
