package ledger

import (
	"strings"
	"time"
)

// AccountKind is the closed set of account kinds.
type AccountKind string

const (
	AccountKindChecking   AccountKind = "checking"
	AccountKindSaving     AccountKind = "saving"
	AccountKindInvestment AccountKind = "investment"
)

// AccountKinds lists every account kind in display order.
var AccountKinds = []AccountKind{AccountKindChecking, AccountKindSaving, AccountKindInvestment}

// ParseAccountKind returns the account kind named by s.
func ParseAccountKind(s string) (AccountKind, bool) {
	switch k := AccountKind(strings.ToLower(strings.TrimSpace(s))); k {
	case AccountKindChecking, AccountKindSaving, AccountKindInvestment:
		return k, true
	}
	return "", false
}

// TransactionKind is the discriminant of a Transaction.
type TransactionKind string

const (
	KindDebit    TransactionKind = "debit"
	KindCredit   TransactionKind = "credit"
	KindTransfer TransactionKind = "transfer"
)

// TransactionKinds lists every transaction kind in display order.
var TransactionKinds = []TransactionKind{KindDebit, KindCredit, KindTransfer}

// ParseTransactionKind returns the transaction kind named by s.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	switch k := TransactionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDebit, KindCredit, KindTransfer:
		return k, true
	}
	return "", false
}

// Operation is the history verb recorded for a balance mutation.
type Operation string

const (
	OperationWithdraw Operation = "withdraw"
	OperationDeposit  Operation = "deposit"
)

// NormalizeMonth maps a calendar month name in any case ("june", " JUNE ")
// to its canonical form ("June"). ok is false when s is not a month name.
func NormalizeMonth(s string) (month string, ok bool) {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return m.String(), true
		}
	}
	return s, false
}

// MonthOf returns the budget month a date falls in.
func MonthOf(t time.Time) string {
	return t.Month().String()
}
