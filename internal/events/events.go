// Package events publishes ledger events to a message broker.
package events

import (
	"context"
	"time"

	"bankbook/internal/ledger"

	"github.com/shopspring/decimal"
)

// Event types, also used as routing keys.
const (
	TypeTransactionApplied  = "ledger.transaction.applied"
	TypeTransactionReversed = "ledger.transaction.reversed"
)

// Event describes a committed change to the ledger.
type Event struct {
	Type               string          `json:"type"`
	TransactionID      string          `json:"transaction_id"`
	Kind               string          `json:"kind"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	OriginAccount      string          `json:"origin_account,omitempty"`
	DestinationAccount string          `json:"destination_account,omitempty"`
	Budget             string          `json:"budget,omitempty"`
	BudgetMonth        string          `json:"budget_month,omitempty"`
	Category           string          `json:"category,omitempty"`
	UserID             string          `json:"user_id,omitempty"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

// NewTransactionEvent builds an event of the given type for t.
func NewTransactionEvent(eventType string, t *ledger.Transaction, userID string, at time.Time) Event {
	e := Event{
		Type:               eventType,
		TransactionID:      t.ID,
		Kind:               string(t.Kind()),
		Amount:             t.Amount,
		Date:               t.Date,
		OriginAccount:      t.Origin(),
		DestinationAccount: t.Destination(),
		Category:           t.Category,
		UserID:             userID,
		OccurredAt:         at,
	}
	if ref := t.Budget(); ref != nil {
		e.Budget = ref.Name
		e.BudgetMonth = ref.Month
	}
	return e
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }
