package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/domain/repositories"
	"chain-comics.backend/pkg/utils"
)

// ChapterUsecase serves the catalog reads and the admin catalog surface
type ChapterUsecase struct {
	chapterRepo repositories.ChapterRepository
	packageRepo repositories.CreditPackageRepository
}

// NewChapterUsecase creates a new chapter usecase
func NewChapterUsecase(chapterRepo repositories.ChapterRepository, packageRepo repositories.CreditPackageRepository) *ChapterUsecase {
	return &ChapterUsecase{chapterRepo: chapterRepo, packageRepo: packageRepo}
}

// ListChapters lists chapters with pagination
func (u *ChapterUsecase) ListChapters(ctx context.Context, page, limit int) ([]*entities.Chapter, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	chapters, total, err := u.chapterRepo.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return chapters, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// GetChapter returns a single chapter by id
func (u *ChapterUsecase) GetChapter(ctx context.Context, id uuid.UUID) (*entities.Chapter, error) {
	return u.chapterRepo.GetByID(ctx, id)
}

// CreateChapter creates a new chapter
func (u *ChapterUsecase) CreateChapter(ctx context.Context, input *entities.CreateChapterInput) (*entities.Chapter, error) {
	locked := true
	if input.IsLocked != nil {
		locked = *input.IsLocked
	}
	chapter := &entities.Chapter{
		ID:           utils.GenerateUUIDv7(),
		ComicTitle:   input.ComicTitle,
		Number:       input.Number,
		Title:        input.Title,
		PriceCredits: input.PriceCredits,
		IsLocked:     locked,
	}
	if err := u.chapterRepo.Create(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// UpdateChapter applies a partial update to a chapter
func (u *ChapterUsecase) UpdateChapter(ctx context.Context, id uuid.UUID, input *entities.UpdateChapterInput) (*entities.Chapter, error) {
	chapter, err := u.chapterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		chapter.Title = *input.Title
	}
	if input.PriceCredits != nil {
		if *input.PriceCredits < 0 {
			return nil, domainerrors.BadRequest("price cannot be negative")
		}
		chapter.PriceCredits = *input.PriceCredits
	}
	if input.IsLocked != nil {
		chapter.IsLocked = *input.IsLocked
	}
	if err := u.chapterRepo.Update(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter soft-deletes a chapter
func (u *ChapterUsecase) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	if _, err := u.chapterRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return u.chapterRepo.SoftDelete(ctx, id)
}

// ListPackages lists credit packages; non-admin callers see active ones only
func (u *ChapterUsecase) ListPackages(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error) {
	return u.packageRepo.List(ctx, activeOnly)
}

// CreatePackage registers a new on-chain credit package
func (u *ChapterUsecase) CreatePackage(ctx context.Context, input *entities.CreateCreditPackageInput) (*entities.CreditPackage, error) {
	if _, err := u.packageRepo.GetByOnChainID(ctx, input.OnChainID); err == nil {
		return nil, domainerrors.Conflict("a package with this on-chain id already exists")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	pkg := &entities.CreditPackage{
		ID:        utils.GenerateUUIDv7(),
		OnChainID: input.OnChainID,
		Name:      input.Name,
		Credits:   input.Credits,
		IsActive:  true,
	}
	if err := u.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// UpdatePackage applies a partial update to a credit package
func (u *ChapterUsecase) UpdatePackage(ctx context.Context, id uuid.UUID, input *entities.UpdateCreditPackageInput) (*entities.CreditPackage, error) {
	pkg, err := u.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		pkg.Name = *input.Name
	}
	if input.Credits != nil {
		if *input.Credits <= 0 {
			return nil, domainerrors.BadRequest("credits must be positive")
		}
		pkg.Credits = *input.Credits
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}
	if err := u.packageRepo.Update(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}
