package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/domain/repositories"
	"chain-comics.backend/pkg/logger"
	"chain-comics.backend/pkg/metrics"
	"chain-comics.backend/pkg/utils"
)

// UnlockUsecase coordinates chapter unlocks: it checks entitlement, debits
// the ledger and grants the unlock in one database transaction. When two
// requests race for the same chapter the loser's debit is compensated with a
// refund row in the same transaction, so the account is never charged twice.
type UnlockUsecase struct {
	chapterRepo     repositories.ChapterRepository
	entitlementRepo repositories.EntitlementRepository
	ledgerRepo      repositories.LedgerRepository
	uow             repositories.UnitOfWork
}

// NewUnlockUsecase creates a new unlock usecase
func NewUnlockUsecase(
	chapterRepo repositories.ChapterRepository,
	entitlementRepo repositories.EntitlementRepository,
	ledgerRepo repositories.LedgerRepository,
	uow repositories.UnitOfWork,
) *UnlockUsecase {
	return &UnlockUsecase{
		chapterRepo:     chapterRepo,
		entitlementRepo: entitlementRepo,
		ledgerRepo:      ledgerRepo,
		uow:             uow,
	}
}

// Unlock grants the account access to a chapter, debiting its price in
// credits. Unlocking an already-unlocked chapter succeeds without charging.
func (u *UnlockUsecase) Unlock(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.UnlockResult, error) {
	chapter, err := u.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	// Fast path: an existing unlock never touches the ledger.
	has, err := u.entitlementRepo.Has(ctx, accountID, chapterID)
	if err != nil {
		return nil, err
	}
	if has {
		balance, err := u.ledgerRepo.BalanceOf(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return &entities.UnlockResult{Unlocked: true, AlreadyUnlocked: true, NewBalance: balance}, nil
	}

	cost := chapter.PriceCredits
	if !chapter.IsLocked {
		cost = 0
	}

	if cost == 0 {
		return u.unlockFree(ctx, accountID, chapterID)
	}

	var refunded bool
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		spend := &entities.Transaction{
			ID:          utils.GenerateUUIDv7(),
			AccountID:   accountID,
			Amount:      -cost,
			Kind:        entities.TransactionKindSpend,
			Status:      entities.TransactionStatusConfirmed,
			Description: "unlock chapter " + chapter.Title,
		}
		if err := u.ledgerRepo.Record(txCtx, spend); err != nil {
			return err
		}

		err := u.entitlementRepo.Grant(txCtx, &entities.ChapterUnlock{
			ID:           utils.GenerateUUIDv7(),
			AccountID:    accountID,
			ChapterID:    chapterID,
			CreditsSpent: cost,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainerrors.ErrAlreadyGranted) {
			return err
		}

		// Lost the race after debiting: undo the charge in the same
		// transaction so both outcomes commit or neither does.
		refunded = true
		refund := &entities.Transaction{
			ID:          utils.GenerateUUIDv7(),
			AccountID:   accountID,
			Amount:      cost,
			Kind:        entities.TransactionKindRefund,
			Status:      entities.TransactionStatusConfirmed,
			Description: "refund for concurrent unlock of chapter " + chapter.Title,
		}
		return u.ledgerRepo.Record(txCtx, refund)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInsufficientCredits) {
			// A concurrent request may have debited and granted between our
			// entitlement check and the guarded debit. The chapter is
			// unlocked either way, so resolve as already unlocked instead
			// of charging or failing.
			granted, hasErr := u.entitlementRepo.Has(ctx, accountID, chapterID)
			if hasErr != nil {
				return nil, hasErr
			}
			balance, balErr := u.ledgerRepo.BalanceOf(ctx, accountID)
			if balErr != nil {
				return nil, balErr
			}
			if granted {
				return &entities.UnlockResult{Unlocked: true, AlreadyUnlocked: true, NewBalance: balance}, nil
			}
			return nil, domainerrors.InsufficientCredits(cost, balance)
		}
		return nil, err
	}

	balance, err := u.ledgerRepo.BalanceOf(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if refunded {
		metrics.RefundCompensations.Inc()
		logger.Warn(ctx, "Unlock race compensated with refund",
			zap.String("accountId", accountID.String()),
			zap.String("chapterId", chapterID.String()),
			zap.Int64("credits", cost),
		)
		return &entities.UnlockResult{Unlocked: true, AlreadyUnlocked: true, NewBalance: balance}, nil
	}

	metrics.ChapterUnlocks.Inc()
	logger.Info(ctx, "Chapter unlocked",
		zap.String("accountId", accountID.String()),
		zap.String("chapterId", chapterID.String()),
		zap.Int64("credits", cost),
	)
	return &entities.UnlockResult{Unlocked: true, NewBalance: balance}, nil
}

// HasAccess reports whether the account may read the chapter
func (u *UnlockUsecase) HasAccess(ctx context.Context, accountID, chapterID uuid.UUID) (bool, error) {
	chapter, err := u.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return false, err
	}
	if !chapter.IsLocked || chapter.PriceCredits == 0 {
		return true, nil
	}
	return u.entitlementRepo.Has(ctx, accountID, chapterID)
}

// ListUnlocks returns the account's unlocked chapters
func (u *UnlockUsecase) ListUnlocks(ctx context.Context, accountID uuid.UUID) ([]*entities.ChapterUnlock, error) {
	return u.entitlementRepo.ListByAccount(ctx, accountID)
}

func (u *UnlockUsecase) unlockFree(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.UnlockResult, error) {
	err := u.entitlementRepo.Grant(ctx, &entities.ChapterUnlock{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		ChapterID:    chapterID,
		CreditsSpent: 0,
	})
	if err != nil && !errors.Is(err, domainerrors.ErrAlreadyGranted) {
		return nil, err
	}
	balance, balErr := u.ledgerRepo.BalanceOf(ctx, accountID)
	if balErr != nil {
		return nil, balErr
	}
	return &entities.UnlockResult{
		Unlocked:        true,
		AlreadyUnlocked: errors.Is(err, domainerrors.ErrAlreadyGranted),
		NewBalance:      balance,
	}, nil
}
