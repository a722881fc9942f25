package models

import (
	"bankbook/internal/ledger"

	"github.com/shopspring/decimal"
)

// Budget represents the remaining allowance of a named budget for one
// calendar month.
type Budget struct {
	Base
	Name   string          `gorm:"not null;uniqueIndex:idx_budgets_name_month,priority:1,where:deleted_at IS NULL" json:"name"`
	Month  string          `gorm:"not null;uniqueIndex:idx_budgets_name_month,priority:2,where:deleted_at IS NULL" json:"month"`
	Amount decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"amount"`
}

// ToLedger converts the row into the domain entity. storedHistory is the
// number of history rows already persisted for it; they are not loaded.
func (b *Budget) ToLedger(storedHistory int) *ledger.Budget {
	return &ledger.Budget{
		ID:      b.ID,
		Name:    b.Name,
		Month:   b.Month,
		Amount:  b.Amount,
		History: ledger.ResumeHistory(storedHistory),
	}
}
