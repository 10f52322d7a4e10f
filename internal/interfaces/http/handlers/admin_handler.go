package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"chain-comics.backend/internal/domain/entities"
	domainerrors "chain-comics.backend/internal/domain/errors"
	"chain-comics.backend/internal/interfaces/http/response"
	"chain-comics.backend/pkg/utils"
)

type AdminCreditService interface {
	AdminAdjust(ctx context.Context, input *entities.AdminAdjustInput) (*entities.CreditResult, error)
}

type AdminAccountService interface {
	ListAccounts(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error)
}

type AdminCatalogService interface {
	CreateChapter(ctx context.Context, input *entities.CreateChapterInput) (*entities.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, input *entities.UpdateChapterInput) (*entities.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) error
	ListPackages(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error)
	CreatePackage(ctx context.Context, input *entities.CreateCreditPackageInput) (*entities.CreditPackage, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, input *entities.UpdateCreditPackageInput) (*entities.CreditPackage, error)
}

// AdminHandler handles the admin surface: ledger adjustments, account
// listing and catalog management. All routes behind RequireAdmin.
type AdminHandler struct {
	creditService  AdminCreditService
	accountService AdminAccountService
	catalogService AdminCatalogService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(creditService AdminCreditService, accountService AdminAccountService, catalogService AdminCatalogService) *AdminHandler {
	return &AdminHandler{
		creditService:  creditService,
		accountService: accountService,
		catalogService: catalogService,
	}
}

// AdjustCredits records a manual ledger adjustment
// POST /api/v1/admin/credits/adjust
func (h *AdminHandler) AdjustCredits(c *gin.Context) {
	var input entities.AdminAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.creditService.AdminAdjust(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListAccounts lists accounts with pagination
// GET /api/v1/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	accounts, meta, err := h.accountService.ListAccounts(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"accounts":   accounts,
		"pagination": meta,
	})
}

// CreateChapter creates a new chapter
// POST /api/v1/admin/chapters
func (h *AdminHandler) CreateChapter(c *gin.Context) {
	var input entities.CreateChapterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	chapter, err := h.catalogService.CreateChapter(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"chapter": chapter})
}

// UpdateChapter applies a partial update to a chapter
// PATCH /api/v1/admin/chapters/:id
func (h *AdminHandler) UpdateChapter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chapter ID"))
		return
	}

	var input entities.UpdateChapterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	chapter, err := h.catalogService.UpdateChapter(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"chapter": chapter})
}

// DeleteChapter soft-deletes a chapter
// DELETE /api/v1/admin/chapters/:id
func (h *AdminHandler) DeleteChapter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chapter ID"))
		return
	}

	if err := h.catalogService.DeleteChapter(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListPackages lists all credit packages including inactive ones
// GET /api/v1/admin/packages
func (h *AdminHandler) ListPackages(c *gin.Context) {
	packages, err := h.catalogService.ListPackages(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"packages": packages})
}

// CreatePackage registers a new credit package
// POST /api/v1/admin/packages
func (h *AdminHandler) CreatePackage(c *gin.Context) {
	var input entities.CreateCreditPackageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pkg, err := h.catalogService.CreatePackage(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"package": pkg})
}

// UpdatePackage applies a partial update to a credit package
// PATCH /api/v1/admin/packages/:id
func (h *AdminHandler) UpdatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid package ID"))
		return
	}

	var input entities.UpdateCreditPackageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pkg, err := h.catalogService.UpdatePackage(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"package": pkg})
}
