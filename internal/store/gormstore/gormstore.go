// Package gormstore is the database-backed ledger.Store. A unit of work is a
// single database transaction; on postgres the account and budget rows it
// reads are locked FOR UPDATE until it commits.
package gormstore

import (
	"context"
	"errors"
	"strings"

	"bankbook/internal/ledger"
	"bankbook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements ledger.Store on top of GORM.
type Store struct {
	db *gorm.DB
}

// New returns a store using db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomically implements ledger.Store. A failed commit is rolled back by the
// database as a whole, so this store never reports ledger.ErrPartialCommit.
func (s *Store) Atomically(ctx context.Context, fn func(tx ledger.Tx) error) error {
	lockRows := s.db.Dialector.Name() == "postgres"
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&unit{db: tx, lockRows: lockRows})
	})
}

type unit struct {
	db       *gorm.DB
	lockRows bool
}

func (u *unit) query() *gorm.DB {
	if u.lockRows {
		return u.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return u.db
}

func (u *unit) GetAccount(ctx context.Context, name string) (*ledger.Account, error) {
	var row models.Account
	err := u.query().WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	next, err := u.nextSeq(ctx, models.HistoryOwnerAccount, row.ID)
	if err != nil {
		return nil, err
	}
	return row.ToLedger(next), nil
}

// PutAccount stores the balance and inserts the history entries appended
// since the account was loaded.
func (u *unit) PutAccount(ctx context.Context, a *ledger.Account) error {
	result := u.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", a.ID).Update("balance", a.Balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	start, pending := a.History.Pending()
	return u.appendHistory(ctx, models.NewHistoryEntries(models.HistoryOwnerAccount, a.ID, start, pending))
}

func (u *unit) GetBudget(ctx context.Context, name, month string) (*ledger.Budget, error) {
	var row models.Budget
	err := u.query().WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND LOWER(month) = LOWER(?)", strings.TrimSpace(name), strings.TrimSpace(month)).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	next, err := u.nextSeq(ctx, models.HistoryOwnerBudget, row.ID)
	if err != nil {
		return nil, err
	}
	return row.ToLedger(next), nil
}

// PutBudget stores the amount and inserts the history entries appended
// since the budget was loaded.
func (u *unit) PutBudget(ctx context.Context, b *ledger.Budget) error {
	result := u.db.WithContext(ctx).Model(&models.Budget{}).Where("id = ?", b.ID).Update("amount", b.Amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	start, pending := b.History.Pending()
	return u.appendHistory(ctx, models.NewHistoryEntries(models.HistoryOwnerBudget, b.ID, start, pending))
}

func (u *unit) AppendTransactionRecord(ctx context.Context, t *ledger.Transaction) error {
	return u.db.WithContext(ctx).Create(models.NewTransactionRecord(t)).Error
}

func (u *unit) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	var row models.Transaction
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToLedger()
}

func (u *unit) DeleteTransactionRecord(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// nextSeq returns the sequence number the owner's next history row takes.
// Sequence numbers start at 0 and have no gaps.
func (u *unit) nextSeq(ctx context.Context, ownerType, ownerID string) (int, error) {
	var next int
	err := u.db.WithContext(ctx).
		Model(&models.HistoryEntry{}).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Select("COALESCE(MAX(seq) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (u *unit) appendHistory(ctx context.Context, rows []models.HistoryEntry) error {
	if len(rows) == 0 {
		return nil
	}
	return u.db.WithContext(ctx).Create(&rows).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.ErrNotFound
	}
	return err
}
