package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bankbook/internal/events"
	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
	"bankbook/internal/store/gormstore"
	"bankbook/internal/testutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestTransactionService(db *gorm.DB, publisher events.Publisher, opts ...ledger.Option) TransactionServicer {
	opts = append([]ledger.Option{ledger.WithLogger(zap.NewNop().Sugar())}, opts...)
	engine := ledger.NewEngine(gormstore.New(db), opts...)
	return NewTransactionService(db, engine, publisher)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateTransaction(t *testing.T) {
	t.Run("debit_updates_account_and_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := newTestTransactionService(db, pub)
		acctSvc := NewAccountService(db)
		budgetSvc := NewBudgetService(db, "default")

		account := testutil.CreateTestAccountNamed(t, db, "Checking", ledger.AccountKindChecking, "1000")
		budget := testutil.CreateTestBudgetNamed(t, db, "Food", "June", "500")

		record, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "debit", Amount: amount("50"), OriginAccount: "Checking",
			Budget: "Food", BudgetMonth: "June", Category: "Groceries", Recipient: "Market",
		})
		testutil.AssertNoError(t, err)

		if record.ID == "" || record.Kind != ledger.KindDebit {
			t.Fatalf("unexpected record %+v", record)
		}
		if record.CreatedAt.IsZero() {
			t.Error("expected the stored record to be returned")
		}

		updated, err := acctSvc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, updated.Balance, "950")

		updatedBudget, err := budgetSvc.GetBudgetByID(budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, updatedBudget.Amount, "450")

		history, err := acctSvc.GetAccountHistory(account.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if history.TotalItems != 1 || history.Data[0].Operation != ledger.OperationWithdraw {
			t.Errorf("expected one withdraw entry, got %+v", history.Data)
		}

		if len(pub.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(pub.events))
		}
		if pub.events[0].Type != events.TypeTransactionApplied || pub.events[0].UserID != "user-1" {
			t.Errorf("unexpected event %+v", pub.events[0])
		}
	})

	t.Run("validation_error_touches_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := newTestTransactionService(db, pub)

		_, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "credit", Amount: amount("-10.0"), DestinationAccount: "B",
		})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
		if len(pub.events) != 0 {
			t.Error("no event expected")
		}
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db, nil)
		account := testutil.CreateTestAccountNamed(t, db, "A", ledger.AccountKindChecking, "1000")

		_, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "debit", Amount: amount("1500"), OriginAccount: "A",
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		var reloaded models.Account
		db.First(&reloaded, "id = ?", account.ID)
		testutil.AssertDecimal(t, reloaded.Balance, "1000")
	})

	t.Run("publish_failure_keeps_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := newTestTransactionService(db, pub)
		testutil.CreateTestAccountNamed(t, db, "B", ledger.AccountKindSaving, "0")

		record, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "credit", Amount: amount("10"), DestinationAccount: "B",
		})
		testutil.AssertNoError(t, err)

		_, err = svc.GetTransactionByID(record.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("default_budget_policy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db, nil, ledger.WithBudgetPolicy(ledger.BudgetPolicyDefault, "default"))
		testutil.CreateTestAccountNamed(t, db, "A", ledger.AccountKindChecking, "100")
		fallback := testutil.CreateTestBudgetNamed(t, db, "default", "March", "0")

		record, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "debit", Amount: amount("25"), OriginAccount: "A",
			Date: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)
		if record.BudgetName == nil || *record.BudgetName != "default" {
			t.Errorf("expected record routed to default budget, got %v", record.BudgetName)
		}

		var reloaded models.Budget
		db.First(&reloaded, "id = ?", fallback.ID)
		testutil.AssertDecimal(t, reloaded.Amount, "-25")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("reverses_transfer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := newTestTransactionService(db, pub)
		a := testutil.CreateTestAccountNamed(t, db, "A", ledger.AccountKindChecking, "1000")
		b := testutil.CreateTestAccountNamed(t, db, "B", ledger.AccountKindSaving, "500")

		record, err := svc.CreateTransaction(context.Background(), "user-1", ledger.Draft{
			Kind: "transfer", Amount: amount("200"), OriginAccount: "A", DestinationAccount: "B",
		})
		testutil.AssertNoError(t, err)

		deleted, err := svc.DeleteTransaction(context.Background(), "user-2", record.ID)
		testutil.AssertNoError(t, err)
		if deleted.ID != record.ID {
			t.Errorf("expected deleted record %s, got %s", record.ID, deleted.ID)
		}

		var ra, rb models.Account
		db.First(&ra, "id = ?", a.ID)
		db.First(&rb, "id = ?", b.ID)
		testutil.AssertDecimal(t, ra.Balance, "1000")
		testutil.AssertDecimal(t, rb.Balance, "500")

		_, err = svc.GetTransactionByID(record.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		if len(pub.events) != 2 || pub.events[1].Type != events.TypeTransactionReversed || pub.events[1].UserID != "user-2" {
			t.Errorf("unexpected events %+v", pub.events)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestTransactionService(db, nil)

		_, err := svc.DeleteTransaction(context.Background(), "user-1", "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestTransactionService(db, nil)

	june := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	july := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)
	testutil.CreateTestTransactionRecord(t, db, ledger.Draft{
		Kind: "debit", Amount: amount("50"), OriginAccount: "A", Budget: "Food", BudgetMonth: "June",
		Category: "Groceries", Date: june,
	})
	testutil.CreateTestTransactionRecord(t, db, ledger.Draft{
		Kind: "credit", Amount: amount("2000"), DestinationAccount: "A", Category: "Salary", Date: july,
	})
	testutil.CreateTestTransactionRecord(t, db, ledger.Draft{
		Kind: "transfer", Amount: amount("300"), OriginAccount: "A", DestinationAccount: "B", Date: july,
	})

	kindDebit := ledger.KindDebit
	accountB := "B"
	budget := "food"
	category := "Salary"
	from := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	min := amount("100")
	max := amount("500")

	tests := []struct {
		name   string
		filter TransactionFilter
		want   int64
	}{
		{name: "no_filter", filter: TransactionFilter{}, want: 3},
		{name: "kind", filter: TransactionFilter{Kind: &kindDebit}, want: 1},
		{name: "account_either_side", filter: TransactionFilter{Account: &accountB}, want: 1},
		{name: "budget_ignores_case", filter: TransactionFilter{Budget: &budget}, want: 1},
		{name: "category", filter: TransactionFilter{Category: &category}, want: 1},
		{name: "from_date", filter: TransactionFilter{FromDate: &from}, want: 2},
		{name: "amount_range", filter: TransactionFilter{MinAmount: &min, MaxAmount: &max}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.GetTransactions(pagination.PageRequest{}, tt.filter)
			testutil.AssertNoError(t, err)
			if page.TotalItems != tt.want {
				t.Errorf("expected %d transactions, got %d", tt.want, page.TotalItems)
			}
		})
	}

	t.Run("newest_first", func(t *testing.T) {
		page, err := svc.GetTransactions(pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.Data[len(page.Data)-1].Kind != ledger.KindDebit {
			t.Errorf("expected the June debit last, got %s", page.Data[len(page.Data)-1].Kind)
		}
	})

	t.Run("categories", func(t *testing.T) {
		categories, err := svc.GetCategories()
		testutil.AssertNoError(t, err)
		want := []string{"Groceries", "Salary", ledger.DefaultCategory}
		if len(categories) != len(want) {
			t.Fatalf("expected %v, got %v", want, categories)
		}
		for i := range want {
			if categories[i] != want[i] {
				t.Errorf("index %d: expected %q, got %q", i, want[i], categories[i])
			}
		}
	})
}
