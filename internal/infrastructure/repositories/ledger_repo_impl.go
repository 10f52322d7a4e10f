package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/infrastructure/models"
)

// LedgerRepository implements the append-only transaction log plus the cached
// per-account balance. The balance column is strictly a materialized view of
// SUM(amount) over CONFIRMED rows; both are written in one atomic step.
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Record inserts a transaction row and moves the cached balance in a single
// database transaction (a savepoint when the caller already runs inside a
// UnitOfWork scope). The guarded balance update is the serialization point
// for concurrent debits and credits on the same account: a debit only lands
// when `balance + amount >= 0` still holds at commit time.
func (r *LedgerRepository) Record(ctx context.Context, tx *entities.Transaction) error {
	db := GetDB(ctx, r.db)

	return db.WithContext(ctx).Transaction(func(dtx *gorm.DB) error {
		m := &models.Transaction{
			ID:           tx.ID,
			AccountID:    tx.AccountID,
			Amount:       tx.Amount,
			Kind:         string(tx.Kind),
			Status:       string(tx.Status),
			ExternalTxID: tx.ExternalTxID.Ptr(),
			ChainID:      tx.ChainID.Ptr(),
			Description:  tx.Description,
		}

		if err := dtx.Create(m).Error; err != nil {
			if isDuplicateKey(err) {
				return domainerrors.ErrDuplicateExternalTx
			}
			return err
		}

		// Only CONFIRMED rows count toward the balance.
		if tx.Status != entities.TransactionStatusConfirmed {
			tx.ID = m.ID
			tx.CreatedAt = m.CreatedAt
			return nil
		}

		query := dtx.Model(&models.Account{}).Where("id = ?", tx.AccountID)
		if tx.Amount < 0 {
			query = query.Where("balance + ? >= 0", tx.Amount)
		}
		result := query.Update("balance", gorm.Expr("balance + ?", tx.Amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if tx.Amount < 0 {
				var count int64
				if err := dtx.Model(&models.Account{}).Where("id = ?", tx.AccountID).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return domainerrors.ErrInsufficientCredits
				}
			}
			return domainerrors.ErrNotFound
		}

		tx.ID = m.ID
		tx.CreatedAt = m.CreatedAt
		return nil
	})
}

// BalanceOf returns the cached balance for an account
func (r *LedgerRepository) BalanceOf(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var m models.Account
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrNotFound
		}
		return 0, err
	}
	return m.Balance, nil
}

// SumConfirmed recomputes the balance from the transaction log. This is the
// ground truth the cached column must always agree with.
func (r *LedgerRepository) SumConfirmed(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ? AND status = ?", accountID, string(entities.TransactionStatusConfirmed)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// GetByExternalTxID gets the transaction previously recorded for an on-chain
// payment, used to resolve duplicate submissions idempotently.
func (r *LedgerRepository) GetByExternalTxID(ctx context.Context, externalTxID string) (*entities.Transaction, error) {
	var m models.Transaction
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("external_tx_id = ?", externalTxID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTransactionEntity(&m), nil
}

// ListByAccount lists an account's transactions, newest first, with pagination
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*entities.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txModels []models.Transaction
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&txModels).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entities.Transaction, 0, len(txModels))
	for i := range txModels {
		txs = append(txs, toTransactionEntity(&txModels[i]))
	}
	return txs, total, nil
}

// ListAccountIDs returns the distinct account ids present in the log,
// used by the balance reconciliation job.
func (r *LedgerRepository) ListAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Distinct("account_id").
		Pluck("account_id", &ids).Error
	return ids, err
}

func toTransactionEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Amount:       m.Amount,
		Kind:         entities.TransactionKind(m.Kind),
		Status:       entities.TransactionStatus(m.Status),
		ExternalTxID: null.StringFromPtr(m.ExternalTxID),
		ChainID:      null.StringFromPtr(m.ChainID),
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

// isDuplicateKey detects unique constraint violations across the postgres
// driver and the sqlite driver used in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
