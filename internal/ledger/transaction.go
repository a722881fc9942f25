package ledger

import (
	"strings"
	"time"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/uuid"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to transactions submitted without a category.
const DefaultCategory = "Unknown"

// AmountScale is the number of decimal places amounts and balances are
// stored with.
const AmountScale = 4

// FitsAmountScale reports whether d can be stored without rounding.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountScale))
}

// Movement is the kind-specific part of a Transaction. Each variant carries
// only the references its kind requires.
type Movement interface {
	Kind() TransactionKind
	movement()
}

// Debit takes money out of Origin and, when set, out of Budget.
type Debit struct {
	Origin string
	Budget *BudgetRef
}

// Credit puts money into Destination and, when set, into Budget.
type Credit struct {
	Destination string
	Budget      *BudgetRef
}

// Transfer moves money from Origin to Destination. Budgets are never touched.
type Transfer struct {
	Origin      string
	Destination string
}

func (Debit) Kind() TransactionKind    { return KindDebit }
func (Credit) Kind() TransactionKind   { return KindCredit }
func (Transfer) Kind() TransactionKind { return KindTransfer }

func (Debit) movement()    {}
func (Credit) movement()   {}
func (Transfer) movement() {}

// Draft is an unvalidated transaction as submitted by a caller. Empty strings
// mean the field is absent.
type Draft struct {
	ID                 string
	Date               time.Time
	Kind               string
	Amount             decimal.Decimal
	OriginAccount      string
	DestinationAccount string
	Budget             string
	BudgetMonth        string
	Category           string
	Recipient          string
	Description        string
}

// Transaction is a validated, immutable record of one balance-affecting event.
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal
	Movement    Movement
	Category    string
	Recipient   string
	Description string
}

// NewTransaction validates d and builds the matching variant. Fields that do
// not belong to the requested kind are dropped.
func NewTransaction(d Draft) (*Transaction, error) {
	kind, ok := ParseTransactionKind(d.Kind)
	if !ok {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidKind, map[string]any{"kind": d.Kind})
	}
	if !d.Amount.IsPositive() || !FitsAmountScale(d.Amount) {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidAmount, map[string]any{"amount": d.Amount.String()})
	}

	origin := strings.TrimSpace(d.OriginAccount)
	destination := strings.TrimSpace(d.DestinationAccount)
	budgetName := strings.TrimSpace(d.Budget)
	budgetMonth := strings.TrimSpace(d.BudgetMonth)

	var budget *BudgetRef
	if budgetName != "" {
		if budgetMonth == "" {
			return nil, apperrors.ErrMissingBudgetMonth
		}
		month, ok := NormalizeMonth(budgetMonth)
		if !ok {
			return nil, apperrors.WithDetails(apperrors.ErrInvalidMonth, map[string]any{"month": budgetMonth})
		}
		budget = &BudgetRef{Name: budgetName, Month: month}
	}

	var mv Movement
	switch kind {
	case KindCredit:
		if destination == "" {
			return nil, apperrors.ErrMissingDestination
		}
		mv = Credit{Destination: destination, Budget: budget}
	case KindDebit:
		if origin == "" {
			return nil, apperrors.ErrMissingOrigin
		}
		mv = Debit{Origin: origin, Budget: budget}
	case KindTransfer:
		if origin == "" || destination == "" {
			return nil, apperrors.ErrMissingAccounts
		}
		if budget != nil {
			return nil, apperrors.ErrBudgetNotAllowed
		}
		if origin == destination {
			return nil, apperrors.ErrSameAccountTransfer
		}
		mv = Transfer{Origin: origin, Destination: destination}
	}

	t := &Transaction{
		ID:          strings.TrimSpace(d.ID),
		Date:        d.Date,
		Amount:      d.Amount,
		Movement:    mv,
		Category:    strings.TrimSpace(d.Category),
		Recipient:   strings.TrimSpace(d.Recipient),
		Description: strings.TrimSpace(d.Description),
	}
	if t.ID == "" {
		t.ID = uuid.New()
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	return t, nil
}

// Kind returns the transaction kind.
func (t *Transaction) Kind() TransactionKind { return t.Movement.Kind() }

// Origin returns the origin account name, or "" for credits.
func (t *Transaction) Origin() string {
	switch m := t.Movement.(type) {
	case Debit:
		return m.Origin
	case Transfer:
		return m.Origin
	}
	return ""
}

// Destination returns the destination account name, or "" for debits.
func (t *Transaction) Destination() string {
	switch m := t.Movement.(type) {
	case Credit:
		return m.Destination
	case Transfer:
		return m.Destination
	}
	return ""
}

// Budget returns the referenced budget, or nil.
func (t *Transaction) Budget() *BudgetRef {
	switch m := t.Movement.(type) {
	case Debit:
		return m.Budget
	case Credit:
		return m.Budget
	}
	return nil
}

// Draft returns the loose form of t, suitable for persistence.
func (t *Transaction) Draft() Draft {
	d := Draft{
		ID:                 t.ID,
		Date:               t.Date,
		Kind:               string(t.Kind()),
		Amount:             t.Amount,
		OriginAccount:      t.Origin(),
		DestinationAccount: t.Destination(),
		Category:           t.Category,
		Recipient:          t.Recipient,
		Description:        t.Description,
	}
	if b := t.Budget(); b != nil {
		d.Budget = b.Name
		d.BudgetMonth = b.Month
	}
	return d
}

// withBudget returns a copy of t routed to ref. Transfers are returned as is.
func (t *Transaction) withBudget(ref BudgetRef) *Transaction {
	c := *t
	switch m := t.Movement.(type) {
	case Debit:
		m.Budget = &ref
		c.Movement = m
	case Credit:
		m.Budget = &ref
		c.Movement = m
	}
	return &c
}
