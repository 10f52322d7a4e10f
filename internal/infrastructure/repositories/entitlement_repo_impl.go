package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/infrastructure/models"
)

// EntitlementRepository implements chapter unlock storage
type EntitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository creates a new entitlement repository
func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// Has reports whether the account already unlocked the chapter
func (r *EntitlementRepository) Has(ctx context.Context, accountID, chapterID uuid.UUID) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db)
	err := db.WithContext(ctx).
		Model(&models.ChapterUnlock{}).
		Where("account_id = ? AND chapter_id = ?", accountID, chapterID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant inserts the unlock row. It uses ON CONFLICT DO NOTHING on the
// (account_id, chapter_id) pair so a lost race surfaces as ErrAlreadyGranted
// without aborting an enclosing transaction; exactly one row ever exists.
func (r *EntitlementRepository) Grant(ctx context.Context, unlock *entities.ChapterUnlock) error {
	m := &models.ChapterUnlock{
		ID:           unlock.ID,
		AccountID:    unlock.AccountID,
		ChapterID:    unlock.ChapterID,
		CreditsSpent: unlock.CreditsSpent,
	}

	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "chapter_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadyGranted
	}

	unlock.ID = m.ID
	unlock.CreatedAt = m.CreatedAt
	return nil
}

// GetByAccountAndChapter gets an existing unlock row
func (r *EntitlementRepository) GetByAccountAndChapter(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.ChapterUnlock, error) {
	var m models.ChapterUnlock
	db := GetDB(ctx, r.db)
	err := db.WithContext(ctx).
		Where("account_id = ? AND chapter_id = ?", accountID, chapterID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUnlockEntity(&m), nil
}

// ListByAccount lists all unlocks for an account, newest first
func (r *EntitlementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.ChapterUnlock, error) {
	var unlockModels []models.ChapterUnlock
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&unlockModels).Error
	if err != nil {
		return nil, err
	}

	unlocks := make([]*entities.ChapterUnlock, 0, len(unlockModels))
	for i := range unlockModels {
		unlocks = append(unlocks, toUnlockEntity(&unlockModels[i]))
	}
	return unlocks, nil
}

func toUnlockEntity(m *models.ChapterUnlock) *entities.ChapterUnlock {
	return &entities.ChapterUnlock{
		ID:           m.ID,
		AccountID:    m.AccountID,
		ChapterID:    m.ChapterID,
		CreditsSpent: m.CreditsSpent,
		CreatedAt:    m.CreatedAt,
	}
}
