package repositories

import (
	"context"

	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
)

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByAddress(ctx context.Context, address string) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Account, int64, error)
	RecomputeBalance(ctx context.Context, id uuid.UUID) (int64, error)
}
