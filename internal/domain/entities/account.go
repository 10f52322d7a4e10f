package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AccountRole represents account roles
type AccountRole string

const (
	AccountRoleAdmin  AccountRole = "ADMIN"
	AccountRoleReader AccountRole = "READER"
)

// Account represents a platform identity keyed by wallet address.
// Balance is a materialized cache of the CONFIRMED transaction sum and is
// updated in the same transaction as every ledger insert.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Address      string      `json:"address"`
	Role         AccountRole `json:"role"`
	Email        null.String `json:"email,omitempty"`
	PasswordHash string      `json:"-"`
	Balance      int64       `json:"balance"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == AccountRoleAdmin
}

// NonceRequestInput represents input for requesting an auth nonce
type NonceRequestInput struct {
	Address string `json:"address" binding:"required"`
}

// NonceChallenge is the one-time challenge handed to the wallet for signing
type NonceChallenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyWalletInput represents input for the signed-challenge verification
type VerifyWalletInput struct {
	Address   string `json:"address" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// AdminLoginInput represents input for the admin email/password login
type AdminLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	SessionID    string   `json:"sessionId,omitempty"`
	Account      *Account `json:"account"`
}
