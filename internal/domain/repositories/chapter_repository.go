package repositories

import (
	"context"

	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
)

// ChapterRepository defines catalog read/write operations consumed by the
// credit core. The unlock coordinator resolves chapter prices here.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *entities.Chapter) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Chapter, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Chapter, int64, error)
	Update(ctx context.Context, chapter *entities.Chapter) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// CreditPackageRepository defines credit package operations
type CreditPackageRepository interface {
	Create(ctx context.Context, pkg *entities.CreditPackage) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CreditPackage, error)
	GetByOnChainID(ctx context.Context, onChainID int64) (*entities.CreditPackage, error)
	List(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error)
	Update(ctx context.Context, pkg *entities.CreditPackage) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
