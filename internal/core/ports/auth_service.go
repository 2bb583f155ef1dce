package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type LoginResult struct {
	Token IssuedToken
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, id domain.Identity) error
	Refresh(ctx context.Context, id domain.Identity) (IssuedToken, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}
