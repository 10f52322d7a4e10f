package repositories

import (
	"context"
)

// UnitOfWork runs a function inside one database transaction. Repository
// calls made through the ctx passed to fn share that transaction, so the
// unlock flow commits its debit and entitlement grant together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
