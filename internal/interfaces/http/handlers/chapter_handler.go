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

type ChapterService interface {
	ListChapters(ctx context.Context, page, limit int) ([]*entities.Chapter, utils.PaginationMeta, error)
	GetChapter(ctx context.Context, id uuid.UUID) (*entities.Chapter, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]*entities.CreditPackage, error)
}

// ChapterHandler handles public catalog endpoints
type ChapterHandler struct {
	chapterUsecase ChapterService
}

// NewChapterHandler creates a new chapter handler
func NewChapterHandler(chapterUsecase ChapterService) *ChapterHandler {
	return &ChapterHandler{chapterUsecase: chapterUsecase}
}

// ListChapters lists the catalog with pagination
// GET /api/v1/chapters
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	chapters, meta, err := h.chapterUsecase.ListChapters(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"chapters":   chapters,
		"pagination": meta,
	})
}

// GetChapter returns a chapter by ID
// GET /api/v1/chapters/:id
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid chapter ID"))
		return
	}

	chapter, err := h.chapterUsecase.GetChapter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"chapter": chapter})
}

// ListPackages lists the active credit packages
// GET /api/v1/packages
func (h *ChapterHandler) ListPackages(c *gin.Context) {
	packages, err := h.chapterUsecase.ListPackages(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"packages": packages})
}
