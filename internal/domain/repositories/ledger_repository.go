package repositories

import (
	"context"

	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
)

// LedgerRepository is the single entry point for new ledger transactions.
// Record inserts the row and moves the cached account balance in one atomic
// step; debits are guarded so the balance can never go below zero. Record
// returns errors.ErrDuplicateExternalTx when the external tx id was already
// credited and errors.ErrInsufficientCredits when a debit would overdraw.
type LedgerRepository interface {
	Record(ctx context.Context, tx *entities.Transaction) error
	BalanceOf(ctx context.Context, accountID uuid.UUID) (int64, error)
	SumConfirmed(ctx context.Context, accountID uuid.UUID) (int64, error)
	GetByExternalTxID(ctx context.Context, externalTxID string) (*entities.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error)
	ListAccountIDs(ctx context.Context) ([]uuid.UUID, error)
}
