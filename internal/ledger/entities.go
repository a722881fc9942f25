package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named balance-holding entity.
type Account struct {
	ID      string
	Name    string
	Kind    AccountKind
	Balance decimal.Decimal
	History History
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	c.History = a.History.clone()
	return &c
}

func (a *Account) withdraw(at time.Time, transactionID string, amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
	a.History.Append(HistoryEntry{Timestamp: at, TransactionID: transactionID, Operation: OperationWithdraw, Amount: amount})
}

func (a *Account) deposit(at time.Time, transactionID string, amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
	a.History.Append(HistoryEntry{Timestamp: at, TransactionID: transactionID, Operation: OperationDeposit, Amount: amount})
}

// BudgetRef names a budget-month.
type BudgetRef struct {
	Name  string
	Month string
}

// Key returns the case-insensitive identity of the referenced budget.
func (r BudgetRef) Key() string {
	return strings.ToLower(strings.TrimSpace(r.Name)) + "/" + strings.ToLower(strings.TrimSpace(r.Month))
}

// Budget is a month-scoped spending allowance.
type Budget struct {
	ID      string
	Name    string
	Month   string
	Amount  decimal.Decimal
	History History
}

// Ref returns the reference that resolves to this budget.
func (b *Budget) Ref() BudgetRef {
	return BudgetRef{Name: b.Name, Month: b.Month}
}

// Clone returns a deep copy of the budget.
func (b *Budget) Clone() *Budget {
	c := *b
	c.History = b.History.clone()
	return &c
}

func (b *Budget) withdraw(at time.Time, transactionID string, amount decimal.Decimal) {
	b.Amount = b.Amount.Sub(amount)
	b.History.Append(HistoryEntry{Timestamp: at, TransactionID: transactionID, Operation: OperationWithdraw, Amount: amount})
}

func (b *Budget) deposit(at time.Time, transactionID string, amount decimal.Decimal) {
	b.Amount = b.Amount.Add(amount)
	b.History.Append(HistoryEntry{Timestamp: at, TransactionID: transactionID, Operation: OperationDeposit, Amount: amount})
}
