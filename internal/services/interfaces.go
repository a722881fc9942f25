package services

import (
	"context"
	"time"

	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"

	"github.com/shopspring/decimal"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(name string, kind ledger.AccountKind, description string, openingBalance decimal.Decimal) (*models.Account, error)
	GetAccounts(page pagination.PageRequest, kind *ledger.AccountKind) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(accountID string) (*models.Account, error)
	GetAccountByName(name string) (*models.Account, error)
	DeleteAccount(accountID string) (*models.Account, error)
	GetAccountHistory(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryEntry], error)
	AccountKinds() []ledger.AccountKind
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(name, month string, amount decimal.Decimal) (*models.Budget, error)
	GetBudgets(page pagination.PageRequest, month *string) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(budgetID string) (*models.Budget, error)
	DeleteBudget(budgetID string) (*models.Budget, error)
	GetBudgetHistory(budgetID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryEntry], error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Kind        *ledger.TransactionKind
	Account     *string
	Budget      *string
	BudgetMonth *string
	Category    *string
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, draft ledger.Draft) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	GetCategories() ([]string, error)
}

// Ledger applies and reverses transactions. *ledger.Engine implements it.
type Ledger interface {
	Apply(ctx context.Context, t *ledger.Transaction) (*ledger.Transaction, error)
	Reverse(ctx context.Context, transactionID string) (*ledger.Transaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
