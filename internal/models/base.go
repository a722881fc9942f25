package models

import (
	"time"

	"bankbook/internal/uuid"

	"gorm.io/gorm"
)

// Base holds the columns shared by soft-deletable tables. Deleted accounts
// and budgets keep their rows so transaction records can still name them.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// assignID fills an empty primary key with a UUIDv7.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.New()
	}
}
