package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/domain/repositories"
	"chain-comics.backend/pkg/crypto"
	"chain-comics.backend/pkg/jwt"
	"chain-comics.backend/pkg/metrics"
	"chain-comics.backend/pkg/redis"
	"chain-comics.backend/pkg/utils"
)

// AuthUsecase handles wallet authentication. Identity is proven by signing a
// server-issued one-time challenge; the signature is verified by recovering
// the signer address from the EIP-191 personal-message hash.
type AuthUsecase struct {
	accountRepo  repositories.AccountRepository
	nonceStore   *redis.NonceStore
	sessionStore *redis.SessionStore
	jwtService   *jwt.JWTService
	siweDomain   string
	sessionTTL   time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accountRepo repositories.AccountRepository,
	nonceStore *redis.NonceStore,
	sessionStore *redis.SessionStore,
	jwtService *jwt.JWTService,
	siweDomain string,
	sessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		accountRepo:  accountRepo,
		nonceStore:   nonceStore,
		sessionStore: sessionStore,
		jwtService:   jwtService,
		siweDomain:   siweDomain,
		sessionTTL:   sessionTTL,
	}
}

// IssueNonce generates a one-time challenge for the address and returns the
// message the wallet must sign. Reissuing replaces any pending challenge.
func (u *AuthUsecase) IssueNonce(ctx context.Context, address string) (*entities.NonceChallenge, error) {
	if !common.IsHexAddress(address) {
		return nil, domainerrors.BadRequest("invalid wallet address")
	}
	normalized := common.HexToAddress(address).Hex()

	nonce, expiresAt, err := u.nonceStore.Issue(ctx, strings.ToLower(normalized))
	if err != nil {
		return nil, err
	}

	return &entities.NonceChallenge{
		Address:   normalized,
		Nonce:     nonce,
		Message:   u.buildMessage(normalized, nonce),
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyWallet verifies a signed challenge and establishes a session. The
// nonce is consumed only after the signature checks out, and a failed consume
// kills the authentication even for a well-formed signature; a replayed
// message can therefore never open a second session.
func (u *AuthUsecase) VerifyWallet(ctx context.Context, input *entities.VerifyWalletInput) (*entities.AuthResponse, error) {
	if !common.IsHexAddress(input.Address) {
		metrics.AuthFailures.WithLabelValues("malformed_message").Inc()
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeMalformedMessage, "invalid wallet address", domainerrors.ErrMalformedMessage)
	}
	claimed := common.HexToAddress(input.Address)

	nonce, err := extractNonce(input.Message)
	if err != nil || !strings.Contains(strings.ToLower(input.Message), strings.ToLower(claimed.Hex())) {
		metrics.AuthFailures.WithLabelValues("malformed_message").Inc()
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeMalformedMessage, "message is missing the nonce or address", domainerrors.ErrMalformedMessage)
	}

	recovered, err := recoverSigner(input.Message, input.Signature)
	if err != nil || recovered != claimed {
		metrics.AuthFailures.WithLabelValues("signature_mismatch").Inc()
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeSignatureMismatch, "signature does not match the claimed address", domainerrors.ErrSignatureMismatch)
	}

	ok, err := u.nonceStore.Consume(ctx, strings.ToLower(claimed.Hex()), nonce)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.AuthFailures.WithLabelValues("nonce_invalid").Inc()
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeNonceInvalid, "nonce is expired, consumed or unknown", domainerrors.ErrNonceInvalid)
	}

	account, err := u.loadOrCreateAccount(ctx, claimed.Hex())
	if err != nil {
		return nil, err
	}

	return u.openSession(ctx, account)
}

// AdminLogin authenticates an admin by email and password
func (u *AuthUsecase) AdminLogin(ctx context.Context, input *entities.AdminLoginInput) (*entities.AuthResponse, error) {
	account, err := u.accountRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.AuthFailures.WithLabelValues("invalid_credentials").Inc()
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "invalid email or password", domainerrors.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !account.IsAdmin() || !crypto.CheckPassword(input.Password, account.PasswordHash) {
		metrics.AuthFailures.WithLabelValues("invalid_credentials").Inc()
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "invalid email or password", domainerrors.ErrInvalidCredentials)
	}

	return u.openSession(ctx, account)
}

// openSession issues a token pair and stores it as an encrypted session
func (u *AuthUsecase) openSession(ctx context.Context, account *entities.Account) (*entities.AuthResponse, error) {
	tokenPair, err := u.jwtService.GenerateTokenPair(account.ID, account.Address, string(account.Role))
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	err = u.sessionStore.CreateSession(ctx, sessionID, &redis.SessionData{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}, u.sessionTTL)
	if err != nil {
		return nil, err
	}

	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		SessionID:    sessionID,
		Account:      account,
	}, nil
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(account.ID, account.Address, string(account.Role))
}

// GetAccountByID gets an account by ID
func (u *AuthUsecase) GetAccountByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return u.accountRepo.GetByID(ctx, id)
}

// ListAccounts lists accounts with pagination for the admin surface
func (u *AuthUsecase) ListAccounts(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	accounts, total, err := u.accountRepo.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return accounts, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

func (u *AuthUsecase) loadOrCreateAccount(ctx context.Context, address string) (*entities.Account, error) {
	account, err := u.accountRepo.GetByAddress(ctx, address)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	account = &entities.Account{
		ID:      utils.GenerateUUIDv7(),
		Address: address,
		Role:    entities.AccountRoleReader,
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		// Two first logins for the same wallet can race; the unique index
		// decides the winner and the loser loads the winner's row.
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return u.accountRepo.GetByAddress(ctx, address)
		}
		return nil, err
	}
	return account, nil
}

func (u *AuthUsecase) buildMessage(address, nonce string) string {
	return fmt.Sprintf(
		"%s wants you to sign in with your Ethereum account:\n%s\n\nUnlock chapters with credits.\n\nNonce: %s\nIssued At: %s",
		u.siweDomain, address, nonce, time.Now().UTC().Format(time.RFC3339),
	)
}

// extractNonce pulls the nonce line out of the signed message
func extractNonce(message string) (string, error) {
	for _, line := range strings.Split(message, "\n") {
		if strings.HasPrefix(line, "Nonce: ") {
			nonce := strings.TrimSpace(strings.TrimPrefix(line, "Nonce: "))
			if nonce != "" {
				return nonce, nil
			}
		}
	}
	return "", domainerrors.ErrMalformedMessage
}

// recoverSigner recovers the signing address from an EIP-191 personal
// signature over the message.
func recoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, domainerrors.ErrSignatureMismatch
	}
	if len(sig) != 65 {
		return common.Address{}, domainerrors.ErrSignatureMismatch
	}

	// Wallets return V as 27/28; go-ethereum expects 0/1.
	if sig[64] >= 27 {
		sig = append([]byte{}, sig...)
		sig[64] -= 27
	}

	pubKey, err := ethcrypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, domainerrors.ErrSignatureMismatch
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}
