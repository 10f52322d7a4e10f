package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ComicTitle   string    `gorm:"type:varchar(255);not null;index"`
	Number       int       `gorm:"not null"`
	Title        string    `gorm:"type:varchar(255);not null"`
	PriceCredits int64     `gorm:"not null;default:0"`
	// No default tag: gorm drops zero-valued fields that carry one from the
	// INSERT, which would silently flip an explicit false back to true.
	IsLocked bool `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type CreditPackage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OnChainID int64     `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Credits   int64     `gorm:"not null"`
	IsActive  bool      `gorm:"not null"` // see IsLocked: no default tag
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
