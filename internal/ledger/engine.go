// Package ledger applies transactions to account and budget balances.
//
// The Engine is the only writer of balances. Every Apply or Reverse runs as
// one unit of work against a Store: entities are resolved, the funds guard is
// checked, and all mutations plus the transaction record are committed
// together or not at all. Work touching the same account, budget or
// transaction id is serialized in process; stores backed by a database add
// their own row locks on top.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BudgetPolicy decides what happens to debits and credits that name no budget.
type BudgetPolicy string

const (
	// BudgetPolicySkip leaves budgets untouched.
	BudgetPolicySkip BudgetPolicy = "skip"
	// BudgetPolicyDefault routes the transaction to the reserved default
	// budget of the transaction's month.
	BudgetPolicyDefault BudgetPolicy = "default"
)

// Engine applies and reverses transactions.
type Engine struct {
	store         Store
	locks         *keyedMutex
	policy        BudgetPolicy
	defaultBudget string
	now           func() time.Time
	log           *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBudgetPolicy sets how unbudgeted debits and credits are handled.
// defaultBudget names the reserved budget used by BudgetPolicyDefault.
func WithBudgetPolicy(policy BudgetPolicy, defaultBudget string) Option {
	return func(e *Engine) {
		e.policy = policy
		e.defaultBudget = defaultBudget
	}
}

// WithClock sets the clock used to timestamp history entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine returns an engine writing through store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locks:  newKeyedMutex(),
		policy: BudgetPolicySkip,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("ledger")
	}
	return e
}

// Apply validates t, applies it exactly once and stores its record. The
// returned transaction is the one that was stored; under BudgetPolicyDefault
// it carries the budget it was routed to.
func (e *Engine) Apply(ctx context.Context, t *Transaction) (*Transaction, error) {
	if t == nil || t.Movement == nil {
		return nil, apperrors.ErrInvalidKind
	}
	t, err := NewTransaction(t.Draft())
	if err != nil {
		return nil, err
	}
	t = e.route(t)

	unlock := e.locks.lock(lockKeys(t)...)
	defer unlock()

	err = e.store.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.GetTransaction(ctx, t.ID); err == nil {
			return apperrors.WithDetails(apperrors.ErrTransactionAlreadyApplied, map[string]any{"transaction_id": t.ID})
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := e.post(ctx, tx, t, t.Amount); err != nil {
			return err
		}
		return tx.AppendTransactionRecord(ctx, t)
	})
	if err != nil {
		return nil, e.fail("apply", t.ID, err)
	}

	e.log.Infow("transaction applied",
		"transaction_id", t.ID,
		"kind", t.Kind(),
		"amount", t.Amount.String(),
	)
	return t, nil
}

// Reverse undoes the transaction with the given id by posting its negated
// amount through the same path Apply uses, then deletes its record.
func (e *Engine) Reverse(ctx context.Context, id string) (*Transaction, error) {
	var t *Transaction
	err := e.store.Atomically(ctx, func(tx Tx) error {
		var err error
		t, err = e.getTransaction(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, e.fail("reverse", id, err)
	}

	unlock := e.locks.lock(lockKeys(t)...)
	defer unlock()

	err = e.store.Atomically(ctx, func(tx Tx) error {
		// another caller may have reversed it while we waited for the locks
		current, err := e.getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		t = current
		if err := e.post(ctx, tx, t, t.Amount.Neg()); err != nil {
			return err
		}
		return tx.DeleteTransactionRecord(ctx, t.ID)
	})
	if err != nil {
		return nil, e.fail("reverse", id, err)
	}

	e.log.Infow("transaction reversed",
		"transaction_id", t.ID,
		"kind", t.Kind(),
		"amount", t.Amount.String(),
	)
	return t, nil
}

// post resolves every entity t references, checks the funds guard and then
// mutates and stores them. amount is the signed amount to post: the
// transaction amount on apply, its negation on reversal.
func (e *Engine) post(ctx context.Context, tx Tx, t *Transaction, amount decimal.Decimal) error {
	var origin, destination *Account
	var budget *Budget
	var err error

	if name := t.Origin(); name != "" {
		if origin, err = e.getAccount(ctx, tx, name); err != nil {
			return err
		}
	}
	if name := t.Destination(); name != "" {
		if destination, err = e.getAccount(ctx, tx, name); err != nil {
			return err
		}
	}
	if ref := t.Budget(); ref != nil {
		if budget, err = e.getBudget(ctx, tx, *ref); err != nil {
			return err
		}
	}

	if origin != nil && amount.IsPositive() && amount.GreaterThan(origin.Balance) {
		return apperrors.WithDetails(apperrors.ErrInsufficientFunds, map[string]any{
			"account": origin.Name,
			"amount":  amount.String(),
			"balance": origin.Balance.String(),
		})
	}

	at := e.now()
	switch t.Movement.(type) {
	case Debit:
		origin.withdraw(at, t.ID, amount)
		if budget != nil {
			budget.withdraw(at, t.ID, amount)
		}
	case Credit:
		destination.deposit(at, t.ID, amount)
		if budget != nil {
			budget.deposit(at, t.ID, amount)
		}
	case Transfer:
		origin.withdraw(at, t.ID, amount)
		destination.deposit(at, t.ID, amount)
	}

	for _, a := range []*Account{origin, destination} {
		if a == nil {
			continue
		}
		if err := tx.PutAccount(ctx, a); err != nil {
			return err
		}
	}
	if budget != nil {
		return tx.PutBudget(ctx, budget)
	}
	return nil
}

// route applies the budget policy to an unbudgeted debit or credit.
func (e *Engine) route(t *Transaction) *Transaction {
	if e.policy != BudgetPolicyDefault || t.Budget() != nil || t.Kind() == KindTransfer {
		return t
	}
	return t.withBudget(BudgetRef{Name: e.defaultBudget, Month: MonthOf(t.Date)})
}

func (e *Engine) getAccount(ctx context.Context, tx Tx, name string) (*Account, error) {
	a, err := tx.GetAccount(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.WithDetails(apperrors.ErrAccountNotFound, map[string]any{"account": name})
	}
	return a, err
}

func (e *Engine) getBudget(ctx context.Context, tx Tx, ref BudgetRef) (*Budget, error) {
	b, err := tx.GetBudget(ctx, ref.Name, ref.Month)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.WithDetails(apperrors.ErrBudgetNotFound, map[string]any{
			"budget": ref.Name,
			"month":  ref.Month,
		})
	}
	return b, err
}

func (e *Engine) getTransaction(ctx context.Context, tx Tx, id string) (*Transaction, error) {
	t, err := tx.GetTransaction(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.WithDetails(apperrors.ErrTransactionNotFound, map[string]any{"transaction_id": id})
	}
	return t, err
}

// fail maps a unit-of-work error onto the error taxonomy.
func (e *Engine) fail(op, id string, err error) error {
	if errors.Is(err, ErrPartialCommit) {
		e.log.Errorw("transaction partially applied", "op", op, "transaction_id", id, "error", err)
		return apperrors.Wrap(apperrors.ErrPartialApplication, err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		e.log.Debugw("transaction aborted", "op", op, "transaction_id", id, "code", appErr.Code)
		return appErr
	}
	e.log.Errorw("transaction storage failure", "op", op, "transaction_id", id, "error", err)
	return apperrors.Wrap(apperrors.ErrStorage, err)
}

func lockKeys(t *Transaction) []string {
	keys := []string{"transaction:" + t.ID}
	for _, name := range []string{t.Origin(), t.Destination()} {
		if name != "" {
			keys = append(keys, "account:"+strings.ToLower(name))
		}
	}
	if ref := t.Budget(); ref != nil {
		keys = append(keys, "budget:"+ref.Key())
	}
	return keys
}
