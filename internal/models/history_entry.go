package models

import (
	"time"

	"bankbook/internal/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// History owner types.
const (
	HistoryOwnerAccount = "account"
	HistoryOwnerBudget  = "budget"
)

// HistoryEntry is one row of an account's or budget's append-only history.
// Rows are only ever inserted.
type HistoryEntry struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerType     string           `gorm:"not null;uniqueIndex:idx_history_owner_seq,priority:1" json:"owner_type"`
	OwnerID       string           `gorm:"type:uuid;not null;uniqueIndex:idx_history_owner_seq,priority:2" json:"owner_id"`
	Seq           int              `gorm:"not null;uniqueIndex:idx_history_owner_seq,priority:3" json:"seq"`
	TransactionID string           `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Operation     ledger.Operation `gorm:"not null" json:"operation"`
	Amount        decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"amount"`
	RecordedAt    time.Time        `gorm:"not null" json:"recorded_at"`
}

func (h *HistoryEntry) BeforeCreate(*gorm.DB) error {
	assignID(&h.ID)
	return nil
}

// NewHistoryEntries builds rows for entries appended to an owner's history.
// start is the sequence number of the first entry.
func NewHistoryEntries(ownerType, ownerID string, start int, entries []ledger.HistoryEntry) []HistoryEntry {
	rows := make([]HistoryEntry, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, HistoryEntry{
			OwnerType:     ownerType,
			OwnerID:       ownerID,
			Seq:           start + i,
			TransactionID: e.TransactionID,
			Operation:     e.Operation,
			Amount:        e.Amount,
			RecordedAt:    e.Timestamp,
		})
	}
	return rows
}
