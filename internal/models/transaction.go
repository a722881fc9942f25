package models

import (
	"time"

	"bankbook/internal/ledger"

	"github.com/shopspring/decimal"
)

// Transaction is the stored record of an applied transaction. Records are
// immutable; reversing a transaction deletes its row.
type Transaction struct {
	ID                 string                 `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time              `json:"created_at"`
	Kind               ledger.TransactionKind `gorm:"not null;index" json:"kind"`
	Date               time.Time              `gorm:"not null;index" json:"date"`
	Amount             decimal.Decimal        `gorm:"type:numeric(20,4);not null" json:"amount"`
	OriginAccount      *string                `gorm:"index" json:"origin_account,omitempty"`
	DestinationAccount *string                `gorm:"index" json:"destination_account,omitempty"`
	BudgetName         *string                `json:"budget,omitempty"`
	BudgetMonth        *string                `json:"budget_month,omitempty"`
	Category           string                 `gorm:"not null;default:'Unknown';index" json:"category"`
	Recipient          string                 `json:"recipient"`
	Description        string                 `json:"description"`
}

// NewTransactionRecord builds the row stored for t.
func NewTransactionRecord(t *ledger.Transaction) *Transaction {
	rec := &Transaction{
		ID:                 t.ID,
		Kind:               t.Kind(),
		Date:               t.Date,
		Amount:             t.Amount,
		OriginAccount:      optional(t.Origin()),
		DestinationAccount: optional(t.Destination()),
		Category:           t.Category,
		Recipient:          t.Recipient,
		Description:        t.Description,
	}
	if ref := t.Budget(); ref != nil {
		rec.BudgetName = optional(ref.Name)
		rec.BudgetMonth = optional(ref.Month)
	}
	return rec
}

// Draft returns the row in the loose form accepted by ledger.NewTransaction.
func (t *Transaction) Draft() ledger.Draft {
	return ledger.Draft{
		ID:                 t.ID,
		Date:               t.Date,
		Kind:               string(t.Kind),
		Amount:             t.Amount,
		OriginAccount:      deref(t.OriginAccount),
		DestinationAccount: deref(t.DestinationAccount),
		Budget:             deref(t.BudgetName),
		BudgetMonth:        deref(t.BudgetMonth),
		Category:           t.Category,
		Recipient:          t.Recipient,
		Description:        t.Description,
	}
}

// ToLedger re-validates the stored row into a domain transaction.
func (t *Transaction) ToLedger() (*ledger.Transaction, error) {
	return ledger.NewTransaction(t.Draft())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
