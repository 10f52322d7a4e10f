package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/pkg/utils"
)

func TestEntitlementRepository_GrantOnce(t *testing.T) {
	db := newTestDB(t)
	createUnlockTable(t, db)
	repo := NewEntitlementRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	chapterID := uuid.New()

	has, err := repo.Has(ctx, accountID, chapterID)
	require.NoError(t, err)
	require.False(t, has)

	unlock := &entities.ChapterUnlock{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		ChapterID:    chapterID,
		CreditsSpent: 5,
	}
	require.NoError(t, repo.Grant(ctx, unlock))

	has, err = repo.Has(ctx, accountID, chapterID)
	require.NoError(t, err)
	require.True(t, has)

	got, err := repo.GetByAccountAndChapter(ctx, accountID, chapterID)
	require.NoError(t, err)
	require.Equal(t, int64(5), got.CreditsSpent)
}

func TestEntitlementRepository_SecondGrantIsAlreadyGranted(t *testing.T) {
	db := newTestDB(t)
	createUnlockTable(t, db)
	repo := NewEntitlementRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	chapterID := uuid.New()

	first := &entities.ChapterUnlock{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		ChapterID:    chapterID,
		CreditsSpent: 5,
	}
	require.NoError(t, repo.Grant(ctx, first))

	// The loser of a concurrent unlock race sees ErrAlreadyGranted without
	// the insert failing hard, so the caller can still compensate inside the
	// same transaction.
	second := &entities.ChapterUnlock{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		ChapterID:    chapterID,
		CreditsSpent: 5,
	}
	err := repo.Grant(ctx, second)
	require.ErrorIs(t, err, domainerrors.ErrAlreadyGranted)

	unlocks, err := repo.ListByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
}

func TestEntitlementRepository_DistinctChaptersAndAccounts(t *testing.T) {
	db := newTestDB(t)
	createUnlockTable(t, db)
	repo := NewEntitlementRepository(db)
	ctx := context.Background()

	accountA := uuid.New()
	accountB := uuid.New()
	chapter1 := uuid.New()
	chapter2 := uuid.New()

	require.NoError(t, repo.Grant(ctx, &entities.ChapterUnlock{ID: utils.GenerateUUIDv7(), AccountID: accountA, ChapterID: chapter1, CreditsSpent: 3}))
	require.NoError(t, repo.Grant(ctx, &entities.ChapterUnlock{ID: utils.GenerateUUIDv7(), AccountID: accountA, ChapterID: chapter2, CreditsSpent: 4}))
	require.NoError(t, repo.Grant(ctx, &entities.ChapterUnlock{ID: utils.GenerateUUIDv7(), AccountID: accountB, ChapterID: chapter1, CreditsSpent: 3}))

	unlocksA, err := repo.ListByAccount(ctx, accountA)
	require.NoError(t, err)
	require.Len(t, unlocksA, 2)

	unlocksB, err := repo.ListByAccount(ctx, accountB)
	require.NoError(t, err)
	require.Len(t, unlocksB, 1)

	_, err = repo.GetByAccountAndChapter(ctx, accountB, chapter2)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
