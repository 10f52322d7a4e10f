package entities

import (
	"time"

	"github.com/google/uuid"
)

// ChapterUnlock represents permanent access by one account to one chapter.
// Unique per (account, chapter); granting is idempotent and rows are never
// deleted.
type ChapterUnlock struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"accountId"`
	ChapterID    uuid.UUID `json:"chapterId"`
	CreditsSpent int64     `json:"creditsSpent"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UnlockResult is the outcome of an unlock request. AlreadyUnlocked marks the
// free re-unlock path where the ledger was not touched.
type UnlockResult struct {
	Unlocked        bool  `json:"unlocked"`
	AlreadyUnlocked bool  `json:"alreadyUnlocked,omitempty"`
	NewBalance      int64 `json:"newBalance"`
}
