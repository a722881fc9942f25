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

// budgetService handles budget-related business logic.
type budgetService struct {
	db            *gorm.DB
	defaultBudget string
}

// NewBudgetService creates a new BudgetServicer. The budget named
// defaultBudget is reserved and left out of listings.
func NewBudgetService(db *gorm.DB, defaultBudget string) BudgetServicer {
	return &budgetService{db: db, defaultBudget: strings.TrimSpace(defaultBudget)}
}

// CreateBudget creates a budget for a calendar month. The month is stored
// in its canonical form ("June").
func (s *budgetService) CreateBudget(name, month string, amount decimal.Decimal) (*models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	canonical, ok := ledger.NormalizeMonth(month)
	if !ok {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidMonth, map[string]any{"month": month})
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}
	if !ledger.FitsAmountScale(amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount has too many decimal places")
	}

	budget := &models.Budget{
		Name:   name,
		Month:  canonical,
		Amount: amount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Budget{}).
			Where("LOWER(name) = LOWER(?) AND month = ?", name, canonical).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateBudget
		}
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// GetBudgets retrieves a paginated list of budgets, optionally for one month.
func (s *budgetService) GetBudgets(page pagination.PageRequest, month *string) (*pagination.PageResponse[models.Budget], error) {
	base := s.db.Model(&models.Budget{})
	if s.defaultBudget != "" {
		base = base.Where("LOWER(name) <> LOWER(?)", s.defaultBudget)
	}
	if month != nil {
		canonical, ok := ledger.NormalizeMonth(*month)
		if !ok {
			return nil, apperrors.WithDetails(apperrors.ErrInvalidMonth, map[string]any{"month": *month})
		}
		base = base.Where("month = ?", canonical)
	}

	result, err := pagination.Find[models.Budget](base, page, "name ASC", "month ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID retrieves a budget by ID
func (s *budgetService) GetBudgetByID(budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(budgetID string) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudgetHistory returns the budget's history, oldest first.
func (s *budgetService) GetBudgetHistory(budgetID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryEntry], error) {
	if _, err := s.GetBudgetByID(budgetID); err != nil {
		return nil, err
	}
	return listHistory(s.db, models.HistoryOwnerBudget, budgetID, page)
}
