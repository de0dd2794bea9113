package accounts

import (
	"context"
	"time"

	"github.com/starford/folio/internal/models"
)

// Store defines the account persistence operations used by the services.
// Consumers depend on this interface rather than *DB so they can be tested
// with fakes.
type Store interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
