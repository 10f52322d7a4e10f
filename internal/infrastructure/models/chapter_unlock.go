package models

import (
	"time"

	"github.com/google/uuid"
)

// ChapterUnlock rows are created once and never deleted.
type ChapterUnlock struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_account_chapter"`
	ChapterID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_account_chapter"`
	CreditsSpent int64     `gorm:"not null"`
	CreatedAt    time.Time

	Account Account `gorm:"foreignKey:AccountID"`
	Chapter Chapter `gorm:"foreignKey:ChapterID"`
}
