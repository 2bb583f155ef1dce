package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// ProfileUpdate changes the caller's own account. CurrentPassword is required
// whenever any field is set.
type ProfileUpdate struct {
	Username        *string
	Email           *string
	NewPassword     *string
	CurrentPassword string
}

type AdminUserInput struct {
	Email    string
	Username string
	Password string
	Role     domain.Role
}

type AdminUserUpdate struct {
	Email    *string
	Username *string
	Role     *domain.Role
}

type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error)
	UpdatePreferences(ctx context.Context, userID string, prefs domain.Preferences) (*domain.User, error)
	Activity(ctx context.Context, userID string) ([]*domain.AuditEntry, error)
	Permissions(role domain.Role) []domain.Permission
	Search(ctx context.Context, f UserFilter) ([]*domain.User, int64, error)
	Create(ctx context.Context, in AdminUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in AdminUserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
