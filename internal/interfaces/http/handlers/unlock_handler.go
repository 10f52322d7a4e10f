package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/interfaces/http/middleware"
	"chain-comics.backend/internal/interfaces/http/response"
)

type UnlockService interface {
	Unlock(ctx context.Context, accountID, chapterID uuid.UUID) (*entities.UnlockResult, error)
	HasAccess(ctx context.Context, accountID, chapterID uuid.UUID) (bool, error)
	ListUnlocks(ctx context.Context, accountID uuid.UUID) ([]*entities.ChapterUnlock, error)
}

// UnlockHandler handles chapter unlock endpoints
type UnlockHandler struct {
	unlockUsecase UnlockService
}

// NewUnlockHandler creates a new unlock handler
func NewUnlockHandler(unlockUsecase UnlockService) *UnlockHandler {
	return &UnlockHandler{unlockUsecase: unlockUsecase}
}

// Unlock spends credits to unlock a chapter for the account
// POST /api/v1/chapters/:id/unlock
func (h *UnlockHandler) Unlock(c *gin.Context) {
	chapterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chapter ID"))
		return
	}

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	result, err := h.unlockUsecase.Unlock(c.Request.Context(), accountID, chapterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyUnlocked {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// CheckAccess reports whether the account can read the chapter
// GET /api/v1/chapters/:id/access
func (h *UnlockHandler) CheckAccess(c *gin.Context) {
	chapterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chapter ID"))
		return
	}

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	hasAccess, err := h.unlockUsecase.HasAccess(c.Request.Context(), accountID, chapterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"hasAccess": hasAccess})
}

// ListUnlocks lists the account's unlocked chapters
// GET /api/v1/unlocks
func (h *UnlockHandler) ListUnlocks(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return
	}

	unlocks, err := h.unlockUsecase.ListUnlocks(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unlocks": unlocks})
}
