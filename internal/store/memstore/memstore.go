// Package memstore is an in-memory ledger.Store. Units of work run one at a
// time; their writes are staged and only become visible on commit.
package memstore

import (
	"context"
	"sync"

	"bankbook/internal/ledger"
)

// Store keeps accounts, budgets and transaction records in memory.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]*ledger.Account
	budgets      map[string]*ledger.Budget
	transactions map[string]*ledger.Transaction
}

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:     make(map[string]*ledger.Account),
		budgets:      make(map[string]*ledger.Budget),
		transactions: make(map[string]*ledger.Transaction),
	}
}

// AddAccount stores a copy of a outside of any unit of work.
func (s *Store) AddAccount(a *ledger.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Name] = settle(a.Clone())
}

// AddBudget stores a copy of b outside of any unit of work.
func (s *Store) AddBudget(b *ledger.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.Ref().Key()] = settleBudget(b.Clone())
}

// Account returns a copy of the named account.
func (s *Store) Account(name string) (*ledger.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[name]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Budget returns a copy of the budget for name and month.
func (s *Store) Budget(name, month string) (*ledger.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[ledger.BudgetRef{Name: name, Month: month}.Key()]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Transaction returns a copy of the stored record with the given id.
func (s *Store) Transaction(id string) (*ledger.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, false
	}
	return cloneTransaction(t), true
}

// TransactionCount returns the number of stored records.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// Atomically implements ledger.Store.
func (s *Store) Atomically(ctx context.Context, fn func(tx ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &unit{
		store:    s,
		accounts: make(map[string]*ledger.Account),
		budgets:  make(map[string]*ledger.Budget),
		appended: make(map[string]*ledger.Transaction),
		deleted:  make(map[string]bool),
	}
	if err := fn(u); err != nil {
		return err
	}
	u.commit()
	return nil
}

// unit stages the writes of one Atomically call.
type unit struct {
	store    *Store
	accounts map[string]*ledger.Account
	budgets  map[string]*ledger.Budget
	appended map[string]*ledger.Transaction
	deleted  map[string]bool
}

func (u *unit) GetAccount(_ context.Context, name string) (*ledger.Account, error) {
	if a, ok := u.accounts[name]; ok {
		return a.Clone(), nil
	}
	if a, ok := u.store.accounts[name]; ok {
		return a.Clone(), nil
	}
	return nil, ledger.ErrNotFound
}

func (u *unit) PutAccount(_ context.Context, a *ledger.Account) error {
	u.accounts[a.Name] = a.Clone()
	return nil
}

func (u *unit) GetBudget(_ context.Context, name, month string) (*ledger.Budget, error) {
	key := ledger.BudgetRef{Name: name, Month: month}.Key()
	if b, ok := u.budgets[key]; ok {
		return b.Clone(), nil
	}
	if b, ok := u.store.budgets[key]; ok {
		return b.Clone(), nil
	}
	return nil, ledger.ErrNotFound
}

func (u *unit) PutBudget(_ context.Context, b *ledger.Budget) error {
	u.budgets[b.Ref().Key()] = b.Clone()
	return nil
}

func (u *unit) AppendTransactionRecord(_ context.Context, t *ledger.Transaction) error {
	u.appended[t.ID] = cloneTransaction(t)
	delete(u.deleted, t.ID)
	return nil
}

func (u *unit) GetTransaction(_ context.Context, id string) (*ledger.Transaction, error) {
	if u.deleted[id] {
		return nil, ledger.ErrNotFound
	}
	if t, ok := u.appended[id]; ok {
		return cloneTransaction(t), nil
	}
	if t, ok := u.store.transactions[id]; ok {
		return cloneTransaction(t), nil
	}
	return nil, ledger.ErrNotFound
}

func (u *unit) DeleteTransactionRecord(ctx context.Context, id string) error {
	if _, err := u.GetTransaction(ctx, id); err != nil {
		return err
	}
	delete(u.appended, id)
	u.deleted[id] = true
	return nil
}

func (u *unit) commit() {
	for name, a := range u.accounts {
		u.store.accounts[name] = settle(a)
	}
	for key, b := range u.budgets {
		u.store.budgets[key] = settleBudget(b)
	}
	for id := range u.deleted {
		delete(u.store.transactions, id)
	}
	for id, t := range u.appended {
		u.store.transactions[id] = t
	}
}

// settle marks every history entry of a as stored.
func settle(a *ledger.Account) *ledger.Account {
	a.History = ledger.NewHistory(a.History.Entries()...)
	return a
}

func settleBudget(b *ledger.Budget) *ledger.Budget {
	b.History = ledger.NewHistory(b.History.Entries()...)
	return b
}

func cloneTransaction(t *ledger.Transaction) *ledger.Transaction {
	c := *t
	switch m := t.Movement.(type) {
	case ledger.Debit:
		m.Budget = cloneRef(m.Budget)
		c.Movement = m
	case ledger.Credit:
		m.Budget = cloneRef(m.Budget)
		c.Movement = m
	}
	return &c
}

func cloneRef(r *ledger.BudgetRef) *ledger.BudgetRef {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
