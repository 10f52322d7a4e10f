package entities

import (
	"time"

	"github.com/google/uuid"
)

// CreditPackage maps an on-chain package id to the credit amount it grants.
// The purchase verifier resolves the CreditsPurchased event through this
// table when the event carries a package id instead of a raw amount.
type CreditPackage struct {
	ID        uuid.UUID `json:"id"`
	OnChainID int64     `json:"onChainId"`
	Name      string    `json:"name"`
	Credits   int64     `json:"credits"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCreditPackageInput represents input for creating a credit package
type CreateCreditPackageInput struct {
	OnChainID int64  `json:"onChainId" binding:"required,min=1"`
	Name      string `json:"name" binding:"required"`
	Credits   int64  `json:"credits" binding:"required,min=1"`
}

// UpdateCreditPackageInput represents input for updating a credit package
type UpdateCreditPackageInput struct {
	Name     *string `json:"name"`
	Credits  *int64  `json:"credits"`
	IsActive *bool   `json:"isActive"`
}
