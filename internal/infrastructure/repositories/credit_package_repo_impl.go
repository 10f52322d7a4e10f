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

// CreditPackageRepository implements credit package storage
type CreditPackageRepository struct {
	db *gorm.DB
}

// NewCreditPackageRepository creates a new credit package repository
func NewCreditPackageRepository(db *gorm.DB) *CreditPackageRepository {
	return &CreditPackageRepository{db: db}
}

// Create creates a new credit package
func (r *CreditPackageRepository) Create(ctx context.Context, pkg *entities.CreditPackage) error {
	m := &models.CreditPackage{
		ID:        pkg.ID,
		OnChainID: pkg.OnChainID,
		Name:      pkg.Name,
		Credits:   pkg.Credits,
		IsActive:  pkg.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	pkg.ID = m.ID
	pkg.CreatedAt = m.CreatedAt
	pkg.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a credit package by ID
func (r *CreditPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CreditPackage, error) {
	var m models.CreditPackage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toCreditPackageEntity(&m), nil
}

// GetByOnChainID resolves the package referenced by a purchase event
func (r *CreditPackageRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*entities.CreditPackage, error) {
	var m models.CreditPackage
	err := r.db.WithContext(ctx).
		Where("on_chain_id = ? AND is_active = ?", onChainID, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toCreditPackageEntity(&m), nil
}

// List lists credit packages
func (r *CreditPackageRepository) List(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error) {
	query := r.db.WithContext(ctx).Order("credits ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var pkgModels []models.CreditPackage
	if err := query.Find(&pkgModels).Error; err != nil {
		return nil, err
	}

	pkgs := make([]*entities.CreditPackage, 0, len(pkgModels))
	for i := range pkgModels {
		pkgs = append(pkgs, toCreditPackageEntity(&pkgModels[i]))
	}
	return pkgs, nil
}

// Update updates credit package fields
func (r *CreditPackageRepository) Update(ctx context.Context, pkg *entities.CreditPackage) error {
	updates := map[string]interface{}{
		"name":      pkg.Name,
		"credits":   pkg.Credits,
		"is_active": pkg.IsActive,
	}

	result := r.db.WithContext(ctx).Model(&models.CreditPackage{}).Where("id = ?", pkg.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a credit package
func (r *CreditPackageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CreditPackage{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toCreditPackageEntity(m *models.CreditPackage) *entities.CreditPackage {
	return &entities.CreditPackage{
		ID:        m.ID,
		OnChainID: m.OnChainID,
		Name:      m.Name,
		Credits:   m.Credits,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
