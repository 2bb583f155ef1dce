package ports

import (
	"context"
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// UserFilter selects users for admin search.
type UserFilter struct {
	Query string      // partial match on email or username
	Role  domain.Role // optional
	domain.PageRequest
}

// UserRepository is the credential store.
// Lookups return domain.ErrUserNotFound when nothing matches; writes that
// collide with the email or username index return domain.ErrUserExists.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	UpdateLastActive(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f UserFilter) ([]*domain.User, int64, error)

	// ConsumeVerifyToken marks the owner of tokenHash verified and clears the
	// token in one step. Returns domain.ErrInvalidVerifyToken when unmatched.
	ConsumeVerifyToken(ctx context.Context, tokenHash string) (*domain.User, error)
	// ConsumeResetToken swaps in passwordHash and clears the reset window, but
	// only while the window is still open at now. Returns
	// domain.ErrInvalidResetToken when unmatched or expired.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error)

	// DigestRecipients lists verified users with email notifications enabled.
	DigestRecipients(ctx context.Context) ([]*domain.User, error)
}
