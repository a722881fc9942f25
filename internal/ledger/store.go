package ledger

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Tx lookups when the record does not exist.
	ErrNotFound = errors.New("ledger: record not found")

	// ErrPartialCommit is returned by Store.Atomically when the unit failed
	// after some of its writes became durable.
	ErrPartialCommit = errors.New("ledger: unit of work partially committed")
)

// Tx is the view of storage available inside one unit of work. Writes are
// only visible to other units once the unit commits.
type Tx interface {
	GetAccount(ctx context.Context, name string) (*Account, error)
	PutAccount(ctx context.Context, a *Account) error
	GetBudget(ctx context.Context, name, month string) (*Budget, error)
	PutBudget(ctx context.Context, b *Budget) error
	AppendTransactionRecord(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	DeleteTransactionRecord(ctx context.Context, id string) error
}

// Store runs fn as a single all-or-nothing unit. If fn returns an error
// nothing it wrote is kept.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}
