package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/interfaces/http/middleware"
	"chain-comics.backend/internal/interfaces/http/response"
	"chain-comics.backend/pkg/utils"
)

type CreditService interface {
	VerifyPurchase(ctx context.Context, accountID uuid.UUID, input *entities.VerifyPurchaseInput) (*entities.CreditResult, error)
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error)
}

// CreditHandler handles credit balance and purchase endpoints
type CreditHandler struct {
	creditUsecase CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditUsecase CreditService) *CreditHandler {
	return &CreditHandler{creditUsecase: creditUsecase}
}

// VerifyPurchase submits an on-chain purchase proof for crediting
// POST /api/v1/credits/verify
func (h *CreditHandler) VerifyPurchase(c *gin.Context) {
	var input entities.VerifyPurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	result, err := h.creditUsecase.VerifyPurchase(c.Request.Context(), accountID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		// Resubmitting an already-credited proof is a success, not a conflict.
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// GetBalance returns the authenticated account's credit balance
// GET /api/v1/credits/balance
func (h *CreditHandler) GetBalance(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	balance, err := h.creditUsecase.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"balance": balance})
}

// ListTransactions lists the account's ledger history
// GET /api/v1/credits/transactions
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transactions, meta, err := h.creditUsecase.ListTransactions(c.Request.Context(), accountID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": transactions,
		"pagination":   meta,
	})
}
