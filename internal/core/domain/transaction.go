package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind says which way a transaction moves a client's balance.
type TransactionKind string

const (
	Charge  TransactionKind = "charge"
	Payment TransactionKind = "payment"
)

// Transaction is a single ledger entry against one client.
type Transaction struct {
	TransactionID    string          `json:"transactionID" validate:"required"`
	ClientID         string          `json:"clientID" validate:"required"`
	Amount           decimal.Decimal `json:"amount"` // Always positive
	Kind             TransactionKind `json:"kind" validate:"required,oneof=charge payment"`
	OccurredAt       time.Time       `json:"occurredAt" validate:"required"`
	Description      string          `json:"description"`
	RelatedSessionID *string         `json:"relatedSessionID,omitempty"` // Set for charges produced by session completion
	CreatedAt        time.Time       `json:"createdAt"`
}

// Validate checks the transaction's shape.
func (t Transaction) Validate() error {
	if err := validateStruct("transaction", t); err != nil {
		return err
	}
	return requirePositive("transaction", "amount", t.Amount)
}

// SignedAmount is the transaction's effect on the client's balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Kind == Payment {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsChargeFor reports whether t is a charge produced by sessionID for clientID.
func (t Transaction) IsChargeFor(sessionID, clientID string) bool {
	return t.Kind == Charge && t.ClientID == clientID && t.RelatedSessionID != nil && *t.RelatedSessionID == sessionID
}

// BalanceOf folds a client's transactions into a balance: charges minus payments.
func BalanceOf(txns []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		balance = balance.Add(t.SignedAmount())
	}
	return balance
}
