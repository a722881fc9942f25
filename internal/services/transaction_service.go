package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/events"
	"bankbook/internal/ledger"
	"bankbook/internal/logger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
)

// transactionService handles transaction-related business logic. Balances
// are only ever changed through the ledger.
type transactionService struct {
	db        *gorm.DB
	ledger    Ledger
	publisher events.Publisher
}

// NewTransactionService creates a new TransactionServicer. A nil publisher
// drops events.
func NewTransactionService(db *gorm.DB, l Ledger, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:        db,
		ledger:    l,
		publisher: publisher,
	}
}

// CreateTransaction validates the draft, applies it and returns the stored record.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, draft ledger.Draft) (*models.Transaction, error) {
	txn, err := ledger.NewTransaction(draft)
	if err != nil {
		return nil, err
	}

	applied, err := s.ledger.Apply(ctx, txn)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeTransactionApplied, applied, userID)

	return s.GetTransactionByID(applied.ID)
}

// GetTransactions retrieves a paginated, filtered list of transactions, newest first.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	q := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter)
	result, err := pagination.Find[models.Transaction](q, page, "date DESC", "id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.Account != nil {
		q = q.Where("(origin_account = ? OR destination_account = ?)", *f.Account, *f.Account)
	}
	if f.Budget != nil {
		q = q.Where("LOWER(budget_name) = LOWER(?)", *f.Budget)
	}
	if f.BudgetMonth != nil {
		q = q.Where("LOWER(budget_month) = LOWER(?)", *f.BudgetMonth)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction record by ID
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction reverses a transaction's effect on every balance it
// touched and removes its record. The removed record is returned.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	reversed, err := s.ledger.Reverse(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeTransactionReversed, reversed, userID)

	return models.NewTransactionRecord(reversed), nil
}

// GetCategories returns the distinct categories in use, sorted.
func (s *transactionService) GetCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Transaction{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// publish sends an event for a committed change. The change stands even if
// publishing fails.
func (s *transactionService) publish(ctx context.Context, eventType string, t *ledger.Transaction, userID string) {
	event := events.NewTransactionEvent(eventType, t, userID, time.Now().UTC())
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Get().Errorw("failed to publish ledger event",
			"error", err,
			"type", eventType,
			"transaction_id", t.ID,
		)
	}
}
