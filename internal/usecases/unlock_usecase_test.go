package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/usecases"
)

func lockedChapter(id uuid.UUID, price int64) *entities.Chapter {
	return &entities.Chapter{
		ID:           id,
		ComicTitle:   "Orbital Drift",
		Number:       3,
		Title:        "Perigee",
		PriceCredits: price,
		IsLocked:     true,
	}
}

func spendOf(amount int64) interface{} {
	return mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Kind == entities.TransactionKindSpend && tx.Amount == amount
	})
}

func refundOf(amount int64) interface{} {
	return mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Kind == entities.TransactionKindRefund && tx.Amount == amount
	})
}

func TestUnlockUsecase_DebitsAndGrants(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	chapterRepo.On("GetByID", ctx, chapterID).Return(lockedChapter(chapterID, 5), nil).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(false, nil).Once()
	uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	ledgerRepo.On("Record", ctx, spendOf(-5)).Return(nil).Once()
	entitlementRepo.On("Grant", ctx, mock.AnythingOfType("*entities.ChapterUnlock")).Return(nil).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(0), nil).Once()

	result, err := uc.Unlock(ctx, accountID, chapterID)
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.False(t, result.AlreadyUnlocked)
	assert.Equal(t, int64(0), result.NewBalance)

	ledgerRepo.AssertExpectations(t)
	entitlementRepo.AssertExpectations(t)
}

func TestUnlockUsecase_AlreadyUnlockedFastPath(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	chapterRepo.On("GetByID", ctx, chapterID).Return(lockedChapter(chapterID, 5), nil).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(true, nil).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(7), nil).Once()

	result, err := uc.Unlock(ctx, accountID, chapterID)
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.True(t, result.AlreadyUnlocked)
	assert.Equal(t, int64(7), result.NewBalance)

	// The ledger is never touched on the fast path.
	ledgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestUnlockUsecase_InsufficientCredits(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	chapterRepo.On("GetByID", ctx, chapterID).Return(lockedChapter(chapterID, 5), nil).Once()
	// Checked once up front and once more after the failed debit.
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(false, nil).Twice()
	uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	ledgerRepo.On("Record", ctx, spendOf(-5)).Return(domainerrors.ErrInsufficientCredits).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(3), nil).Once()

	_, err := uc.Unlock(ctx, accountID, chapterID)
	require.Error(t, err)

	var insufficientErr *domainerrors.InsufficientCreditsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(5), insufficientErr.Required)
	assert.Equal(t, int64(3), insufficientErr.Available)

	entitlementRepo.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything)
}

func TestUnlockUsecase_LostRaceIsRefunded(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	chapterRepo.On("GetByID", ctx, chapterID).Return(lockedChapter(chapterID, 5), nil).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(false, nil).Once()
	uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	ledgerRepo.On("Record", ctx, spendOf(-5)).Return(nil).Once()
	entitlementRepo.On("Grant", ctx, mock.AnythingOfType("*entities.ChapterUnlock")).Return(domainerrors.ErrAlreadyGranted).Once()
	ledgerRepo.On("Record", ctx, refundOf(5)).Return(nil).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(5), nil).Once()

	result, err := uc.Unlock(ctx, accountID, chapterID)
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.True(t, result.AlreadyUnlocked)
	assert.Equal(t, int64(5), result.NewBalance)

	ledgerRepo.AssertExpectations(t)
}

func TestUnlockUsecase_LostRaceWithExactBalanceResolvesGranted(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	// Balance exactly covers one unlock. A concurrent request debits and
	// grants between this request's entitlement check and its own debit, so
	// the guarded debit comes up short even though the chapter is unlocked.
	chapterRepo.On("GetByID", ctx, chapterID).Return(lockedChapter(chapterID, 5), nil).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(false, nil).Once()
	uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	ledgerRepo.On("Record", ctx, spendOf(-5)).Return(domainerrors.ErrInsufficientCredits).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(true, nil).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(0), nil).Once()

	result, err := uc.Unlock(ctx, accountID, chapterID)
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.True(t, result.AlreadyUnlocked)
	assert.Equal(t, int64(0), result.NewBalance)

	// No refund row: this request never managed to debit.
	ledgerRepo.AssertNotCalled(t, "Record", ctx, refundOf(5))
	entitlementRepo.AssertExpectations(t)
}

func TestUnlockUsecase_FreeChapterSkipsLedger(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()
	chapterID := uuid.New()

	free := lockedChapter(chapterID, 0)
	chapterRepo.On("GetByID", ctx, chapterID).Return(free, nil).Once()
	entitlementRepo.On("Has", ctx, accountID, chapterID).Return(false, nil).Once()
	entitlementRepo.On("Grant", ctx, mock.AnythingOfType("*entities.ChapterUnlock")).Return(nil).Once()
	ledgerRepo.On("BalanceOf", ctx, accountID).Return(int64(9), nil).Once()

	result, err := uc.Unlock(ctx, accountID, chapterID)
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.Equal(t, int64(9), result.NewBalance)

	ledgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestUnlockUsecase_UnknownChapter(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	chapterID := uuid.New()

	chapterRepo.On("GetByID", ctx, chapterID).Return(nil, domainerrors.ErrNotFound).Once()

	_, err := uc.Unlock(ctx, uuid.New(), chapterID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUnlockUsecase_HasAccess(t *testing.T) {
	chapterRepo := new(MockChapterRepository)
	entitlementRepo := new(MockEntitlementRepository)
	ledgerRepo := new(MockLedgerRepository)
	uow := new(MockUnitOfWork)
	uc := usecases.NewUnlockUsecase(chapterRepo, entitlementRepo, ledgerRepo, uow)

	ctx := context.Background()
	accountID := uuid.New()

	openChapterID := uuid.New()
	open := lockedChapter(openChapterID, 5)
	open.IsLocked = false
	chapterRepo.On("GetByID", ctx, openChapterID).Return(open, nil).Once()

	hasAccess, err := uc.HasAccess(ctx, accountID, openChapterID)
	require.NoError(t, err)
	assert.True(t, hasAccess)
	entitlementRepo.AssertNotCalled(t, "Has", mock.Anything, mock.Anything, mock.Anything)

	paidChapterID := uuid.New()
	chapterRepo.On("GetByID", ctx, paidChapterID).Return(lockedChapter(paidChapterID, 5), nil).Once()
	entitlementRepo.On("Has", ctx, accountID, paidChapterID).Return(false, nil).Once()

	hasAccess, err = uc.HasAccess(ctx, accountID, paidChapterID)
	require.NoError(t, err)
	assert.False(t, hasAccess)
}
