package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bankbook/internal/ledger"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionEvent(t *testing.T) {
	txn, err := ledger.NewTransaction(ledger.Draft{
		Kind: "debit", Amount: decimal.RequireFromString("12.50"), OriginAccount: "A",
		Budget: "Food", BudgetMonth: "june", Category: "Groceries",
	})
	require.NoError(t, err)
	at := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	e := NewTransactionEvent(TypeTransactionApplied, txn, "user-1", at)
	assert.Equal(t, TypeTransactionApplied, e.Type)
	assert.Equal(t, txn.ID, e.TransactionID)
	assert.Equal(t, "debit", e.Kind)
	assert.Equal(t, "A", e.OriginAccount)
	assert.Empty(t, e.DestinationAccount)
	assert.Equal(t, "Food", e.Budget)
	assert.Equal(t, "June", e.BudgetMonth)
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, at, e.OccurredAt)
}

func TestNewPublishing(t *testing.T) {
	e := Event{
		Type:          TypeTransactionReversed,
		TransactionID: "t1",
		Kind:          "credit",
		Amount:        decimal.RequireFromString("3.10"),
		OccurredAt:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	msg, err := newPublishing(e)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "t1:"+TypeTransactionReversed, msg.MessageId)
	assert.Equal(t, e.OccurredAt, msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "3.1", body["amount"])
	assert.Equal(t, TypeTransactionReversed, body["type"])
	assert.NotContains(t, body, "origin_account")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
