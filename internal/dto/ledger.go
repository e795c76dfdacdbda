package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// RecordPaymentRequest defines the data for a manual client payment.
type RecordPaymentRequest struct {
	ClientID    string          `json:"clientID" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// RecordExpenseRequest defines the data for a practice expense.
type RecordExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category"`
}

// ListTransactionsParams defines query parameters for listing a client's transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextToken    *string              `json:"nextToken,omitempty"`
}

// ChargeSessionResponse lists the charges a (re)charge call created.
type ChargeSessionResponse struct {
	Charges []domain.Transaction `json:"charges"`
}
