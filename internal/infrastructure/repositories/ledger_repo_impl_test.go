package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/pkg/utils"
)

func newLedgerAccount(t *testing.T, repo *LedgerRepository, balance int64) uuid.UUID {
	t.Helper()
	id := utils.GenerateUUIDv7()
	mustExec(t, repo.db, `INSERT INTO accounts(id,address,role,balance,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		id.String(), "0xabc"+id.String(), "READER", balance, time.Now(), time.Now())
	return id
}

func TestLedgerRepository_RecordCreditsBalance(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 0)

	tx := &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		Amount:       625,
		Kind:         entities.TransactionKindPurchase,
		Status:       entities.TransactionStatusConfirmed,
		ExternalTxID: null.StringFrom("0xproof1"),
		ChainID:      null.StringFrom("84532"),
	}
	require.NoError(t, repo.Record(ctx, tx))

	balance, err := repo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(625), balance)

	got, err := repo.GetByExternalTxID(ctx, "0xproof1")
	require.NoError(t, err)
	require.Equal(t, int64(625), got.Amount)
	require.Equal(t, entities.TransactionKindPurchase, got.Kind)
}

func TestLedgerRepository_DuplicateExternalTxID(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 0)

	first := &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		Amount:       625,
		Kind:         entities.TransactionKindPurchase,
		Status:       entities.TransactionStatusConfirmed,
		ExternalTxID: null.StringFrom("0xsame"),
	}
	require.NoError(t, repo.Record(ctx, first))

	// Replaying the same proof must not create a second row or move the
	// balance again.
	replay := &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		Amount:       625,
		Kind:         entities.TransactionKindPurchase,
		Status:       entities.TransactionStatusConfirmed,
		ExternalTxID: null.StringFrom("0xsame"),
	}
	err := repo.Record(ctx, replay)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateExternalTx)

	balance, err := repo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(625), balance)

	sum, err := repo.SumConfirmed(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(625), sum)
}

func TestLedgerRepository_DebitGuard(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 3)

	spend := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		AccountID: accountID,
		Amount:    -5,
		Kind:      entities.TransactionKindSpend,
		Status:    entities.TransactionStatusConfirmed,
	}
	err := repo.Record(ctx, spend)
	require.ErrorIs(t, err, domainerrors.ErrInsufficientCredits)

	// The rejected debit leaves no trace: no row and no balance change.
	balance, err := repo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(3), balance)

	txs, total, err := repo.ListByAccount(ctx, accountID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
	require.Empty(t, txs)
}

func TestLedgerRepository_DebitToExactlyZero(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 5)

	spend := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		AccountID: accountID,
		Amount:    -5,
		Kind:      entities.TransactionKindSpend,
		Status:    entities.TransactionStatusConfirmed,
	}
	require.NoError(t, repo.Record(ctx, spend))

	balance, err := repo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestLedgerRepository_PendingDoesNotMoveBalance(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 10)

	pending := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		AccountID: accountID,
		Amount:    100,
		Kind:      entities.TransactionKindPurchase,
		Status:    entities.TransactionStatusPending,
	}
	require.NoError(t, repo.Record(ctx, pending))

	balance, err := repo.BalanceOf(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(10), balance)

	sum, err := repo.SumConfirmed(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, int64(0), sum)
}

func TestLedgerRepository_UnknownAccount(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	tx := &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		AccountID: uuid.New(),
		Amount:    10,
		Kind:      entities.TransactionKindPurchase,
		Status:    entities.TransactionStatusConfirmed,
	}
	err := repo.Record(ctx, tx)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.BalanceOf(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByExternalTxID(ctx, "0xmissing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLedgerRepository_ListByAccountPagination(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createTransactionTable(t, db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	accountID := newLedgerAccount(t, repo, 0)

	for i := 0; i < 5; i++ {
		tx := &entities.Transaction{
			ID:        utils.GenerateUUIDv7(),
			AccountID: accountID,
			Amount:    10,
			Kind:      entities.TransactionKindPurchase,
			Status:    entities.TransactionStatusConfirmed,
		}
		require.NoError(t, repo.Record(ctx, tx))
	}

	txs, total, err := repo.ListByAccount(ctx, accountID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, txs, 2)

	rest, _, err := repo.ListByAccount(ctx, accountID, 10, 4)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	ids, err := repo.ListAccountIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{accountID}, ids)
}
