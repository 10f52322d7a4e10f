package repositories

import (
	"context"

	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
)

// EntitlementRepository defines chapter unlock operations. Grant is safe
// under concurrent calls for the same (account, chapter) pair: exactly one
// row is ever created and losers get errors.ErrAlreadyGranted.
type EntitlementRepository interface {
	Has(ctx context.Context, accountID, chapterID uuid.UUID) (bool, error)
	Grant(ctx context.Context, unlock *entities.ChapterUnlock) error
	GetByAccountAndChapter(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.ChapterUnlock, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.ChapterUnlock, error)
}
