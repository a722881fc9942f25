package models

import (
	"bankbook/internal/ledger"

	"github.com/shopspring/decimal"
)

// Account represents a balance-holding account. Names are unique among
// accounts that have not been deleted.
type Account struct {
	Base
	Name        string             `gorm:"not null;uniqueIndex:idx_accounts_name,where:deleted_at IS NULL" json:"name"`
	Kind        ledger.AccountKind `gorm:"not null" json:"kind"`
	Balance     decimal.Decimal    `gorm:"type:numeric(20,4);not null;default:0" json:"balance"`
	Description string             `json:"description"`
}

// ToLedger converts the row into the domain entity. storedHistory is the
// number of history rows already persisted for it; they are not loaded.
func (a *Account) ToLedger(storedHistory int) *ledger.Account {
	return &ledger.Account{
		ID:      a.ID,
		Name:    a.Name,
		Kind:    a.Kind,
		Balance: a.Balance,
		History: ledger.ResumeHistory(storedHistory),
	}
}
