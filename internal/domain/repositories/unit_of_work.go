package repositories

import (
	"context"
)

// UnitOfWork runs a group of store writes atomically. Repositories pick the
// transaction up from the context passed to fn.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(txCtx context.Context) error) error
}
