package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/pkg/utils"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &entities.Account{
		ID:      utils.GenerateUUIDv7(),
		Address: "0x8BA1f109551bD432803012645Ac136ddd64DBa72",
		Role:    entities.AccountRoleReader,
	}
	require.NoError(t, repo.Create(ctx, account))

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.Address, byID.Address)
	require.Equal(t, int64(0), byID.Balance)

	byAddr, err := repo.GetByAddress(ctx, account.Address)
	require.NoError(t, err)
	require.Equal(t, account.ID, byAddr.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetByAddress(ctx, "0x0000000000000000000000000000000000000000")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccountRepository_DuplicateAddress(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	address := "0x8BA1f109551bD432803012645Ac136ddd64DBa72"
	require.NoError(t, repo.Create(ctx, &entities.Account{ID: utils.GenerateUUIDv7(), Address: address, Role: entities.AccountRoleReader}))

	err := repo.Create(ctx, &entities.Account{ID: utils.GenerateUUIDv7(), Address: address, Role: entities.AccountRoleReader})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAccountRepository_GetByEmailForAdmin(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	admin := &entities.Account{
		ID:           utils.GenerateUUIDv7(),
		Address:      "0x00000000219ab540356cBB839Cbe05303d7705Fa",
		Role:         entities.AccountRoleAdmin,
		Email:        null.StringFrom("admin@chain-comics.app"),
		PasswordHash: "$2a$14$notarealhash",
	}
	require.NoError(t, repo.Create(ctx, admin))

	got, err := repo.GetByEmail(ctx, "admin@chain-comics.app")
	require.NoError(t, err)
	require.True(t, got.IsAdmin())
	require.Equal(t, admin.PasswordHash, got.PasswordHash)

	_, err = repo.GetByEmail(ctx, "nobody@chain-comics.app")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccountRepository_RecomputeBalance(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewAccountRepository(db)
	ledgerRepo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, ledgerRepo, 0)

	tx := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		AccountID: accountID,
		Amount:    40,
		Kind:      entities.TransactionKindPurchase,
		Status:    entities.TransactionStatusConfirmed,
	}
	require.NoError(t, ledgerRepo.Record(ctx, tx))

	// Simulate drift from manual surgery on the cached column.
	mustExec(t, db, `UPDATE accounts SET balance = 999 WHERE id = ?`, accountID.String())

	recomputed, err := repo.RecomputeBalance(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(40), recomputed)

	balance, err := ledgerRepo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(40), balance)

	_, err = repo.RecomputeBalance(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccountRepository_List(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id := utils.GenerateUUIDv7()
		require.NoError(t, repo.Create(ctx, &entities.Account{ID: id, Address: "0xaddr" + id.String(), Role: entities.AccountRoleReader}))
	}

	accounts, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, accounts, 2)
}
