package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/infrastructure/models"
)

// AccountRepository implements account data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{
		ID:           account.ID,
		Address:      account.Address,
		Role:         string(account.Role),
		PasswordHash: account.PasswordHash,
		Balance:      account.Balance,
	}
	if account.Email.Valid {
		email := account.Email.String
		m.Email = &email
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	account.ID = m.ID
	account.CreatedAt = m.CreatedAt
	account.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	var m models.Account
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// GetByAddress gets an account by its normalized wallet address
func (r *AccountRepository) GetByAddress(ctx context.Context, address string) (*entities.Account, error) {
	var m models.Account
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("address = ?", address).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// GetByEmail gets an account by admin login email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var m models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// List lists accounts with pagination
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*entities.Account, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accountModels []models.Account
	query := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*entities.Account, 0, len(accountModels))
	for i := range accountModels {
		accounts = append(accounts, toAccountEntity(&accountModels[i]))
	}
	return accounts, total, nil
}

// RecomputeBalance rewrites the cached balance from the CONFIRMED transaction
// sum and returns the recomputed value. Used by the reconciliation job.
func (r *AccountRepository) RecomputeBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ? AND status = ?", id, string(entities.TransactionStatusConfirmed)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("balance", sum)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrNotFound
	}
	return sum, nil
}

func toAccountEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:           m.ID,
		Address:      m.Address,
		Role:         entities.AccountRole(m.Role),
		Email:        null.StringFromPtr(m.Email),
		PasswordHash: m.PasswordHash,
		Balance:      m.Balance,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
