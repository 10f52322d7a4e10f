package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/infrastructure/models"
)

// ChapterRepository implements catalog chapter storage
type ChapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create creates a new chapter
func (r *ChapterRepository) Create(ctx context.Context, chapter *entities.Chapter) error {
	m := &models.Chapter{
		ID:           chapter.ID,
		ComicTitle:   chapter.ComicTitle,
		Number:       chapter.Number,
		Title:        chapter.Title,
		PriceCredits: chapter.PriceCredits,
		IsLocked:     chapter.IsLocked,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	chapter.ID = m.ID
	chapter.CreatedAt = m.CreatedAt
	chapter.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a chapter by ID
func (r *ChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Chapter, error) {
	var m models.Chapter
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toChapterEntity(&m), nil
}

// List lists chapters ordered by comic and number
func (r *ChapterRepository) List(ctx context.Context, limit, offset int) ([]*entities.Chapter, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Chapter{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var chapterModels []models.Chapter
	query := r.db.WithContext(ctx).Order("comic_title ASC, number ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&chapterModels).Error; err != nil {
		return nil, 0, err
	}

	chapters := make([]*entities.Chapter, 0, len(chapterModels))
	for i := range chapterModels {
		chapters = append(chapters, toChapterEntity(&chapterModels[i]))
	}
	return chapters, total, nil
}

// Update updates chapter fields
func (r *ChapterRepository) Update(ctx context.Context, chapter *entities.Chapter) error {
	updates := map[string]interface{}{
		"title":         chapter.Title,
		"price_credits": chapter.PriceCredits,
		"is_locked":     chapter.IsLocked,
	}

	result := r.db.WithContext(ctx).Model(&models.Chapter{}).Where("id = ?", chapter.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a chapter
func (r *ChapterRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Chapter{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toChapterEntity(m *models.Chapter) *entities.Chapter {
	return &entities.Chapter{
		ID:           m.ID,
		ComicTitle:   m.ComicTitle,
		Number:       m.Number,
		Title:        m.Title,
		PriceCredits: m.PriceCredits,
		IsLocked:     m.IsLocked,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
