package entities

import (
	"time"

	"github.com/google/uuid"
)

// Chapter represents one sellable content unit of the catalog. Only the
// fields the credit core needs are modeled here; page content and rendering
// live elsewhere.
type Chapter struct {
	ID           uuid.UUID `json:"id"`
	ComicTitle   string    `json:"comicTitle"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	PriceCredits int64     `json:"priceCredits"`
	IsLocked     bool      `json:"isLocked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateChapterInput represents input for creating a chapter
type CreateChapterInput struct {
	ComicTitle   string `json:"comicTitle" binding:"required"`
	Number       int    `json:"number" binding:"required,min=1"`
	Title        string `json:"title" binding:"required"`
	PriceCredits int64  `json:"priceCredits" binding:"min=0"`
	IsLocked     *bool  `json:"isLocked"`
}

// UpdateChapterInput represents input for updating a chapter
type UpdateChapterInput struct {
	Title        *string `json:"title"`
	PriceCredits *int64  `json:"priceCredits"`
	IsLocked     *bool   `json:"isLocked"`
}
