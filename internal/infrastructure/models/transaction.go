package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction rows are append-only; no UpdatedAt, no soft delete. The partial
// unique index on external_tx_id is the replay defense for purchase proofs.
type Transaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount       int64     `gorm:"not null"`
	Kind         string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(20);not null;index"`
	ExternalTxID *string   `gorm:"type:varchar(255);uniqueIndex"`
	ChainID      *string   `gorm:"type:varchar(50)"`
	Description  string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time

	Account Account `gorm:"foreignKey:AccountID"`
}
