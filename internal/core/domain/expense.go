package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a practice cost. It never touches a client balance.
type Expense struct {
	ExpenseID   string          `json:"expenseID" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurredAt" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks the expense's shape.
func (e Expense) Validate() error {
	if err := validateStruct("expense", e); err != nil {
		return err
	}
	return requirePositive("expense", "amount", e.Amount)
}
