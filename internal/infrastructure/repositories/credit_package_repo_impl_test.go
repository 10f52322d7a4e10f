package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/pkg/utils"
)

func TestCreditPackageRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	createCreditPackageTable(t, db)
	repo := NewCreditPackageRepository(db)
	ctx := context.Background()

	pkg := &entities.CreditPackage{
		ID:        utils.GenerateUUIDv7(),
		OnChainID: 2,
		Name:      "Starter Pack",
		Credits:   625,
		IsActive:  true,
	}
	require.NoError(t, repo.Create(ctx, pkg))

	byChain, err := repo.GetByOnChainID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, int64(625), byChain.Credits)

	_, err = repo.GetByOnChainID(ctx, 99)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	inactive := &entities.CreditPackage{
		ID:        utils.GenerateUUIDv7(),
		OnChainID: 3,
		Name:      "Legacy Pack",
		Credits:   100,
		IsActive:  false,
	}
	require.NoError(t, repo.Create(ctx, inactive))

	// An inactive package must never resolve for purchase crediting.
	_, err = repo.GetByOnChainID(ctx, 3)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byChain.IsActive = false
	require.NoError(t, repo.Update(ctx, byChain))

	active, err = repo.List(ctx, true)
	require.NoError(t, err)
	require.Empty(t, active)

	require.NoError(t, repo.SoftDelete(ctx, inactive.ID))
	all, err = repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
