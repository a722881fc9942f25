package services

import (
	"testing"

	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
	"bankbook/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount(" Checking ", ledger.AccountKindChecking, "Main account", decimal.RequireFromString("1000.50"))
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID")
		}
		if account.Name != "Checking" {
			t.Errorf("expected name Checking, got %q", account.Name)
		}
		if account.Kind != ledger.AccountKindChecking {
			t.Errorf("expected kind checking, got %s", account.Kind)
		}
		testutil.AssertDecimal(t, account.Balance, "1000.50")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("  ", ledger.AccountKindChecking, "", decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_opening_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Savings", ledger.AccountKindSaving, "", decimal.NewFromInt(-1))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("opening_balance_finer_than_stored_scale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Savings", ledger.AccountKindSaving, "", decimal.RequireFromString("0.00005"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("kind_not_configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, ledger.AccountKindChecking, ledger.AccountKindSaving)

		_, err := svc.CreateAccount("Broker", ledger.AccountKindInvestment, "", decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_ACCOUNT_KIND")
	})

	t.Run("unknown_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Card", ledger.AccountKind("credit_card"), "", decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_ACCOUNT_KIND")
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Checking", ledger.AccountKindChecking, "", decimal.Zero)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateAccount("Checking", ledger.AccountKindSaving, "", decimal.Zero)
		testutil.AssertAppError(t, err, "DUPLICATE_ACCOUNT")
	})

	t.Run("name_reusable_after_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		first, err := svc.CreateAccount("Checking", ledger.AccountKindChecking, "", decimal.Zero)
		testutil.AssertNoError(t, err)
		_, err = svc.DeleteAccount(first.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAccount("Checking", ledger.AccountKindChecking, "", decimal.Zero)
		testutil.AssertNoError(t, err)
	})
}

func TestGetAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)

	testutil.CreateTestAccountNamed(t, db, "B", ledger.AccountKindSaving, "1")
	testutil.CreateTestAccountNamed(t, db, "A", ledger.AccountKindChecking, "2")
	testutil.CreateTestAccountNamed(t, db, "C", ledger.AccountKindSaving, "3")

	t.Run("sorted_by_name", func(t *testing.T) {
		page, err := svc.GetAccounts(pagination.PageRequest{}, nil)
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Fatalf("expected 3 accounts, got %d", page.TotalItems)
		}
		if page.Data[0].Name != "A" || page.Data[2].Name != "C" {
			t.Errorf("expected accounts sorted by name, got %s..%s", page.Data[0].Name, page.Data[2].Name)
		}
	})

	t.Run("filter_by_kind", func(t *testing.T) {
		kind := ledger.AccountKindSaving
		page, err := svc.GetAccounts(pagination.PageRequest{}, &kind)
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 saving accounts, got %d", page.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.GetAccounts(pagination.PageRequest{Page: 2, PageSize: 2}, nil)
		testutil.AssertNoError(t, err)
		if len(page.Data) != 1 {
			t.Errorf("expected 1 account on page 2, got %d", len(page.Data))
		}
		if page.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", page.TotalPages)
		}
	})
}

func TestGetAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	account := testutil.CreateTestAccountNamed(t, db, "Wallet", ledger.AccountKindChecking, "5")

	t.Run("by_id", func(t *testing.T) {
		got, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		if got.Name != "Wallet" {
			t.Errorf("expected Wallet, got %s", got.Name)
		}
	})

	t.Run("by_name", func(t *testing.T) {
		got, err := svc.GetAccountByName("Wallet")
		testutil.AssertNoError(t, err)
		if got.ID != account.ID {
			t.Errorf("expected %s, got %s", account.ID, got.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetAccountByID("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("deleted", func(t *testing.T) {
		other := testutil.CreateTestAccount(t, db)
		_, err := svc.DeleteAccount(other.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetAccountByID(other.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
		_, err = svc.DeleteAccount(other.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestGetAccountHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	account := testutil.CreateTestAccount(t, db)

	rows := models.NewHistoryEntries(models.HistoryOwnerAccount, account.ID, 0, []ledger.HistoryEntry{
		{TransactionID: "00000000-0000-0000-0000-000000000001", Operation: ledger.OperationDeposit, Amount: decimal.NewFromInt(5)},
		{TransactionID: "00000000-0000-0000-0000-000000000002", Operation: ledger.OperationWithdraw, Amount: decimal.NewFromInt(2)},
	})
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	page, err := svc.GetAccountHistory(account.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Fatalf("expected 2 entries, got %d", page.TotalItems)
	}
	if page.Data[0].Operation != ledger.OperationDeposit || page.Data[1].Seq != 1 {
		t.Errorf("expected entries in sequence order, got %+v", page.Data)
	}

	_, err = svc.GetAccountHistory("00000000-0000-0000-0000-000000000000", pagination.PageRequest{})
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAccountKinds(t *testing.T) {
	svc := NewAccountService(nil, ledger.AccountKindSaving)
	kinds := svc.AccountKinds()
	if len(kinds) != 1 || kinds[0] != ledger.AccountKindSaving {
		t.Errorf("expected [saving], got %v", kinds)
	}

	all := NewAccountService(nil).AccountKinds()
	if len(all) != 3 {
		t.Errorf("expected every kind by default, got %v", all)
	}
}
