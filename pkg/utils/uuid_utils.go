package utils

import (
	"github.com/google/uuid"
)

// GenerateUUIDv7 returns a time-ordered UUID. Ledger rows and unlocks are
// keyed by these so inserts stay roughly append-ordered in the index.
func GenerateUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the entropy source does; fall back to v4
		return uuid.New()
	}
	return id
}
