package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"chain-comics.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByAddress(ctx context.Context, address string) (*entities.Account, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*entities.Account, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) RecomputeBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// Mock LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) BalanceOf(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumConfirmed(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) GetByExternalTxID(ctx context.Context, externalTxID string) (*entities.Transaction, error) {
	args := m.Called(ctx, externalTxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) ListAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// Mock EntitlementRepository
type MockEntitlementRepository struct {
	mock.Mock
}

func (m *MockEntitlementRepository) Has(ctx context.Context, accountID, chapterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID, chapterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntitlementRepository) Grant(ctx context.Context, unlock *entities.ChapterUnlock) error {
	args := m.Called(ctx, unlock)
	return args.Error(0)
}

func (m *MockEntitlementRepository) GetByAccountAndChapter(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.ChapterUnlock, error) {
	args := m.Called(ctx, accountID, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChapterUnlock), args.Error(1)
}

func (m *MockEntitlementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.ChapterUnlock, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChapterUnlock), args.Error(1)
}

// Mock ChapterRepository
type MockChapterRepository struct {
	mock.Mock
}

func (m *MockChapterRepository) Create(ctx context.Context, chapter *entities.Chapter) error {
	args := m.Called(ctx, chapter)
	return args.Error(0)
}

func (m *MockChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chapter), args.Error(1)
}

func (m *MockChapterRepository) List(ctx context.Context, limit, offset int) ([]*entities.Chapter, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Chapter), args.Get(1).(int64), args.Error(2)
}

func (m *MockChapterRepository) Update(ctx context.Context, chapter *entities.Chapter) error {
	args := m.Called(ctx, chapter)
	return args.Error(0)
}

func (m *MockChapterRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock CreditPackageRepository
type MockCreditPackageRepository struct {
	mock.Mock
}

func (m *MockCreditPackageRepository) Create(ctx context.Context, pkg *entities.CreditPackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockCreditPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CreditPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CreditPackage), args.Error(1)
}

func (m *MockCreditPackageRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*entities.CreditPackage, error) {
	args := m.Called(ctx, onChainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CreditPackage), args.Error(1)
}

func (m *MockCreditPackageRepository) List(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CreditPackage), args.Error(1)
}

func (m *MockCreditPackageRepository) Update(ctx context.Context, pkg *entities.CreditPackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockCreditPackageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
