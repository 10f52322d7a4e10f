package usecases

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"chain-comics.backend/internal/config"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/domain/repositories"
	"chain-comics.backend/internal/infrastructure/blockchain"
	"chain-comics.backend/pkg/logger"
	"chain-comics.backend/pkg/metrics"
	"chain-comics.backend/pkg/utils"
)

// creditsPurchasedSig is the purchase event emitted by the payment contract:
// buyer is indexed, the data words are packageId, credits and the contract's
// monotonically increasing purchase counter.
const creditsPurchasedSig = "CreditsPurchased(address,uint256,uint256,uint256)"

var creditsPurchasedTopic = ethcrypto.Keccak256Hash([]byte(creditsPurchasedSig))

var creditsPurchasedArgs = func() abi.Arguments {
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "packageId", Type: uint256Ty},
		{Name: "credits", Type: uint256Ty},
		{Name: "purchaseId", Type: uint256Ty},
	}
}()

// CreditUsecase reconciles on-chain purchases into the ledger and serves
// balance and history reads. Crediting is idempotent per transaction hash:
// the ledger's unique external tx id turns any resubmission into a no-op
// that reports the originally credited amount.
type CreditUsecase struct {
	accountRepo   repositories.AccountRepository
	ledgerRepo    repositories.LedgerRepository
	packageRepo   repositories.CreditPackageRepository
	uow           repositories.UnitOfWork
	clientFactory *blockchain.ClientFactory
	chains        map[string]config.ChainConfig
	minConf       uint64
	lookupTimeout time.Duration
}

// NewCreditUsecase creates a new credit usecase
func NewCreditUsecase(
	accountRepo repositories.AccountRepository,
	ledgerRepo repositories.LedgerRepository,
	packageRepo repositories.CreditPackageRepository,
	uow repositories.UnitOfWork,
	clientFactory *blockchain.ClientFactory,
	chainCfg config.BlockchainConfig,
) *CreditUsecase {
	return &CreditUsecase{
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		packageRepo:   packageRepo,
		uow:           uow,
		clientFactory: clientFactory,
		chains:        chainCfg.Chains,
		minConf:       chainCfg.MinConfirmations,
		lookupTimeout: chainCfg.LookupTimeout,
	}
}

// VerifyPurchase confirms a claimed on-chain purchase and credits the account
// exactly once. All chain lookups happen before any ledger write, so no
// account row is ever locked across a network call.
func (u *CreditUsecase) VerifyPurchase(ctx context.Context, accountID uuid.UUID, input *entities.VerifyPurchaseInput) (*entities.CreditResult, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// A proof already in the log resolves idempotently without touching the
	// chain again.
	if existing, err := u.ledgerRepo.GetByExternalTxID(ctx, input.ExternalTxID); err == nil {
		return u.duplicateResult(ctx, accountID, existing)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	chainCfg, ok := u.chains[input.ChainID]
	if !ok {
		metrics.VerificationFailures.WithLabelValues("wrong_chain").Inc()
		return nil, verificationError(domainerrors.CodeWrongChain, "unsupported chain id", domainerrors.ErrWrongChain)
	}

	credits, payer, purchaseID, err := u.lookupPurchase(ctx, chainCfg, input.ExternalTxID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(payer.Hex(), account.Address) {
		metrics.VerificationFailures.WithLabelValues("address_mismatch").Inc()
		return nil, verificationError(domainerrors.CodeAddressMismatch, "purchase was paid by a different wallet", domainerrors.ErrAddressMismatch)
	}

	tx := &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		AccountID:    accountID,
		Amount:       credits,
		Kind:         entities.TransactionKindPurchase,
		Status:       entities.TransactionStatusConfirmed,
		ExternalTxID: null.StringFrom(input.ExternalTxID),
		ChainID:      null.StringFrom(input.ChainID),
		Description:  "on-chain purchase " + purchaseID,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.ledgerRepo.Record(txCtx, tx)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateExternalTx) {
			// A concurrent submission of the same proof won the race.
			existing, getErr := u.ledgerRepo.GetByExternalTxID(ctx, input.ExternalTxID)
			if getErr != nil {
				return nil, getErr
			}
			return u.duplicateResult(ctx, accountID, existing)
		}
		return nil, err
	}

	balance, err := u.ledgerRepo.BalanceOf(ctx, accountID)
	if err != nil {
		return nil, err
	}

	metrics.CreditsCredited.Add(float64(credits))
	logger.Info(ctx, "Purchase credited",
		zap.String("account", account.Address),
		zap.String("externalTxId", input.ExternalTxID),
		zap.Int64("credits", credits),
	)

	return &entities.CreditResult{CreditsAdded: credits, NewBalance: balance}, nil
}

// GetBalance returns the account balance
func (u *CreditUsecase) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return u.ledgerRepo.BalanceOf(ctx, accountID)
}

// ListTransactions lists the account's ledger history with pagination
func (u *CreditUsecase) ListTransactions(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	txs, total, err := u.ledgerRepo.ListByAccount(ctx, accountID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return txs, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// AdminAdjust records a manual ledger adjustment for the wallet address.
// Negative adjustments go through the same guarded debit path as spends and
// can never push a balance below zero.
func (u *CreditUsecase) AdminAdjust(ctx context.Context, input *entities.AdminAdjustInput) (*entities.CreditResult, error) {
	if input.Amount == 0 {
		return nil, domainerrors.BadRequest("adjustment amount must be non-zero")
	}
	if !common.IsHexAddress(input.Address) {
		return nil, domainerrors.BadRequest("invalid wallet address")
	}

	account, err := u.accountRepo.GetByAddress(ctx, common.HexToAddress(input.Address).Hex())
	if err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		ID:          utils.GenerateUUIDv7(),
		AccountID:   account.ID,
		Amount:      input.Amount,
		Kind:        entities.TransactionKindAdminAdjustment,
		Status:      entities.TransactionStatusConfirmed,
		Description: input.Reason,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.ledgerRepo.Record(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}

	balance, err := u.ledgerRepo.BalanceOf(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &entities.CreditResult{CreditsAdded: input.Amount, NewBalance: balance}, nil
}

// lookupPurchase fetches the receipt and decodes the purchase event. Missing
// receipts and insufficient confirmation depth surface as retryable
// TxNotFound since the chain is eventually consistent.
func (u *CreditUsecase) lookupPurchase(ctx context.Context, chainCfg config.ChainConfig, txHash string) (int64, common.Address, string, error) {
	client, err := u.clientFactory.GetEVMClient(chainCfg.RPCURL)
	if err != nil {
		return 0, common.Address{}, "", err
	}

	if client.ChainID() != nil && client.ChainID().String() != chainCfg.ChainID {
		metrics.VerificationFailures.WithLabelValues("wrong_chain").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeWrongChain, "RPC endpoint reports a different chain", domainerrors.ErrWrongChain)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, u.lookupTimeout)
	defer cancel()

	receipt, err := client.GetTransactionReceipt(lookupCtx, txHash)
	if err != nil || receipt == nil {
		metrics.VerificationFailures.WithLabelValues("tx_not_found").Inc()
		return 0, common.Address{}, "", domainerrors.TxNotFound("transaction not found on chain yet, retry shortly")
	}

	head, err := client.GetBlockNumber(lookupCtx)
	if err != nil {
		return 0, common.Address{}, "", domainerrors.TxNotFound("chain head unavailable, retry shortly")
	}
	if receipt.BlockNumber == nil || head < receipt.BlockNumber.Uint64()+u.minConf-1 {
		metrics.VerificationFailures.WithLabelValues("unconfirmed").Inc()
		return 0, common.Address{}, "", domainerrors.TxNotFound("transaction not confirmed deep enough yet, retry shortly")
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "transaction reverted on chain", domainerrors.ErrMalformedEvent)
	}

	contract := common.HexToAddress(chainCfg.PaymentContract)
	var purchaseLog *types.Log
	touchedContract := false
	for _, l := range receipt.Logs {
		if l.Address != contract {
			continue
		}
		touchedContract = true
		if len(l.Topics) >= 2 && l.Topics[0] == creditsPurchasedTopic {
			purchaseLog = l
			break
		}
	}
	if !touchedContract {
		metrics.VerificationFailures.WithLabelValues("wrong_contract").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeWrongContract, "transaction does not target the payment contract", domainerrors.ErrWrongContract)
	}
	if purchaseLog == nil {
		metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "no purchase event in transaction", domainerrors.ErrMalformedEvent)
	}

	payer := common.BytesToAddress(purchaseLog.Topics[1].Bytes())

	values, err := creditsPurchasedArgs.Unpack(purchaseLog.Data)
	if err != nil || len(values) != 3 {
		metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "purchase event data is malformed", domainerrors.ErrMalformedEvent)
	}

	packageID, ok1 := values[0].(*big.Int)
	rawCredits, ok2 := values[1].(*big.Int)
	purchaseID, ok3 := values[2].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "purchase event data is malformed", domainerrors.ErrMalformedEvent)
	}

	credits := rawCredits.Int64()
	if packageID.Sign() > 0 {
		// Package purchases resolve the credit amount server-side; the event
		// amount is advisory.
		pkg, err := u.packageRepo.GetByOnChainID(ctx, packageID.Int64())
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
				return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "unknown credit package", domainerrors.ErrMalformedEvent)
			}
			return 0, common.Address{}, "", err
		}
		credits = pkg.Credits
	}
	if credits <= 0 {
		metrics.VerificationFailures.WithLabelValues("malformed_event").Inc()
		return 0, common.Address{}, "", verificationError(domainerrors.CodeMalformedEvent, "purchase event carries no credits", domainerrors.ErrMalformedEvent)
	}

	return credits, payer, purchaseID.String(), nil
}

func (u *CreditUsecase) duplicateResult(ctx context.Context, accountID uuid.UUID, existing *entities.Transaction) (*entities.CreditResult, error) {
	if existing.AccountID != accountID {
		// The proof was credited to a different wallet; this submission can
		// never succeed.
		metrics.VerificationFailures.WithLabelValues("address_mismatch").Inc()
		return nil, verificationError(domainerrors.CodeAddressMismatch, "purchase was credited to a different account", domainerrors.ErrAddressMismatch)
	}

	balance, err := u.ledgerRepo.BalanceOf(ctx, accountID)
	if err != nil {
		return nil, err
	}

	metrics.DuplicateSubmissions.Inc()
	return &entities.CreditResult{
		CreditsAdded: existing.Amount,
		NewBalance:   balance,
		Duplicate:    true,
	}, nil
}

func verificationError(code, message string, err error) *domainerrors.AppError {
	return domainerrors.NewAppError(http.StatusUnprocessableEntity, code, message, err)
}
