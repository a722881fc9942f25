package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db    *gorm.DB
	kinds []ledger.AccountKind
}

// NewAccountService creates a new AccountServicer that accepts the given
// account kinds. No kinds means every kind is accepted.
func NewAccountService(db *gorm.DB, kinds ...ledger.AccountKind) AccountServicer {
	if len(kinds) == 0 {
		kinds = ledger.AccountKinds
	}
	return &accountService{db: db, kinds: kinds}
}

// AccountKinds returns the account kinds this service accepts.
func (s *accountService) AccountKinds() []ledger.AccountKind {
	out := make([]ledger.AccountKind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// CreateAccount creates an account with a non-negative opening balance.
func (s *accountService) CreateAccount(name string, kind ledger.AccountKind, description string, openingBalance decimal.Decimal) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !s.kindAllowed(kind) {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidAccountKind, map[string]any{"kind": kind})
	}
	if openingBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance cannot be negative")
	}
	if !ledger.FitsAmountScale(openingBalance) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance has too many decimal places")
	}

	account := &models.Account{
		Name:        name,
		Kind:        kind,
		Description: description,
		Balance:     openingBalance,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateAccount
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccounts retrieves a paginated list of accounts, optionally of one kind.
func (s *accountService) GetAccounts(page pagination.PageRequest, kind *ledger.AccountKind) (*pagination.PageResponse[models.Account], error) {
	q := s.db.Model(&models.Account{})
	if kind != nil {
		q = q.Where("kind = ?", *kind)
	}

	result, err := pagination.Find[models.Account](q, page, "name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetAccountByID retrieves an account by ID
func (s *accountService) GetAccountByID(accountID string) (*models.Account, error) {
	return s.findAccount("id = ?", accountID)
}

// GetAccountByName retrieves an account by its unique name
func (s *accountService) GetAccountByName(name string) (*models.Account, error) {
	return s.findAccount("name = ?", strings.TrimSpace(name))
}

// DeleteAccount soft-deletes an account. Transactions that reference it are
// left untouched; reversing them later fails with ACCOUNT_NOT_FOUND.
func (s *accountService) DeleteAccount(accountID string) (*models.Account, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetAccountHistory returns the account's history, oldest first.
func (s *accountService) GetAccountHistory(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryEntry], error) {
	if _, err := s.GetAccountByID(accountID); err != nil {
		return nil, err
	}
	return listHistory(s.db, models.HistoryOwnerAccount, accountID, page)
}

func (s *accountService) findAccount(query string, arg string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where(query, arg).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

func (s *accountService) kindAllowed(kind ledger.AccountKind) bool {
	for _, k := range s.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// listHistory pages through the history of one account or budget.
func listHistory(db *gorm.DB, ownerType, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryEntry], error) {
	q := db.Model(&models.HistoryEntry{}).Where("owner_type = ? AND owner_id = ?", ownerType, ownerID)
	result, err := pagination.Find[models.HistoryEntry](q, page, "seq ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
