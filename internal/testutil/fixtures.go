package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"bankbook/internal/ledger"
	"bankbook/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a checking account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, ledger.AccountKindChecking, "0")
}

// CreateTestAccountWithBalance creates an account of the given kind and balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, kind ledger.AccountKind, balance string) *models.Account {
	t.Helper()
	return CreateTestAccountNamed(t, db, fmt.Sprintf("Test Account %d", nextID()), kind, balance)
}

// CreateTestAccountNamed creates an account with an explicit name.
func CreateTestAccountNamed(t *testing.T, db *gorm.DB, name string, kind ledger.AccountKind, balance string) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:    name,
		Kind:    kind,
		Balance: decimal.RequireFromString(balance),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestBudget creates a uniquely named budget for month.
func CreateTestBudget(t *testing.T, db *gorm.DB, month, amount string) *models.Budget {
	t.Helper()
	return CreateTestBudgetNamed(t, db, fmt.Sprintf("Test Budget %d", nextID()), month, amount)
}

// CreateTestBudgetNamed creates a budget with an explicit name.
func CreateTestBudgetNamed(t *testing.T, db *gorm.DB, name, month, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:   name,
		Month:  month,
		Amount: decimal.RequireFromString(amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestTransactionRecord stores a transaction record without applying
// it to any balance. Useful for listing and filtering tests.
func CreateTestTransactionRecord(t *testing.T, db *gorm.DB, draft ledger.Draft) *models.Transaction {
	t.Helper()

	txn, err := ledger.NewTransaction(draft)
	if err != nil {
		t.Fatalf("invalid test transaction: %v", err)
	}
	record := models.NewTransactionRecord(txn)
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return record
}
