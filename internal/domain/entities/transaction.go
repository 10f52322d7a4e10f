package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionKind represents the kind of a ledger transaction.
// Sign conventions are fixed by kind and never inferred from descriptions:
// SPEND is always negative, PURCHASE and REFUND always positive,
// ADMIN_ADJUSTMENT carries either sign.
type TransactionKind string

const (
	TransactionKindPurchase        TransactionKind = "PURCHASE"
	TransactionKindSpend           TransactionKind = "SPEND"
	TransactionKindRefund          TransactionKind = "REFUND"
	TransactionKindAdminAdjustment TransactionKind = "ADMIN_ADJUSTMENT"
)

// TransactionStatus represents the lifecycle status of a transaction.
// Rows are immutable once they reach a terminal status.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction represents one ledger entry. ExternalTxID is present only for
// PURCHASE rows originating on-chain and is unique across the whole log; that
// uniqueness is the sole defense against double-crediting a replayed proof.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	AccountID    uuid.UUID         `json:"accountId"`
	Amount       int64             `json:"amount"`
	Kind         TransactionKind   `json:"kind"`
	Status       TransactionStatus `json:"status"`
	ExternalTxID null.String       `json:"externalTxId,omitempty"`
	ChainID      null.String       `json:"chainId,omitempty"`
	Description  string            `json:"description,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// VerifyPurchaseInput represents input for submitting an on-chain purchase proof
type VerifyPurchaseInput struct {
	ExternalTxID string `json:"externalTxId" binding:"required"`
	ChainID      string `json:"chainId" binding:"required"`
}

// CreditResult is the outcome of a purchase verification. Duplicate is true
// when the proof had already been credited and the call resolved idempotently.
type CreditResult struct {
	CreditsAdded int64 `json:"creditsAdded"`
	NewBalance   int64 `json:"newBalance"`
	Duplicate    bool  `json:"-"`
}

// AdminAdjustInput represents input for a manual ledger adjustment
type AdminAdjustInput struct {
	Address string `json:"address" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
	Reason  string `json:"reason" binding:"required,min=3,max=255"`
}
