package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

const activityLimit = 50

type userService struct {
	users  ports.UserRepository
	audit  ports.AuditRepository
	hasher ports.PasswordHasher
	table  *rbac.Table
	log    zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	audit ports.AuditRepository,
	hasher ports.PasswordHasher,
	table *rbac.Table,
	log zerolog.Logger,
) ports.UserService {
	return &userService{users: users, audit: audit, hasher: hasher, table: table, log: log}
}

func (s *userService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, in.CurrentPassword) {
		return nil, domain.ErrWrongPassword
	}

	upd := domain.UserUpdate{Username: in.Username, Email: in.Email}
	if in.NewPassword != nil {
		hash, err := s.hasher.Hash(*in.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash: %w", err)
		}
		upd.PasswordHash = &hash
	}
	// A changed address must be proven again.
	if in.Email != nil && *in.Email != user.Email {
		unverified := false
		upd.EmailVerified = &unverified
	}
	return s.users.Update(ctx, userID, upd)
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, prefs domain.Preferences) (*domain.User, error) {
	return s.users.Update(ctx, userID, domain.UserUpdate{Preferences: &prefs})
}

func (s *userService) Activity(ctx context.Context, userID string) ([]*domain.AuditEntry, error) {
	return s.audit.ListByUser(ctx, userID, activityLimit)
}

func (s *userService) Permissions(role domain.Role) []domain.Permission {
	return s.table.Permissions(role)
}

func (s *userService) Search(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	f.PageRequest = f.PageRequest.Normalize()
	return s.users.Search(ctx, f)
}

// Create adds an account on behalf of an administrator. Such accounts skip
// email verification.
func (s *userService) Create(ctx context.Context, in ports.AdminUserInput) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, domain.ValidationFailed([]domain.FieldIssue{{Field: "role", Message: "unknown role"}})
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash: %w", err)
	}
	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:         in.Email,
		Username:      in.Username,
		PasswordHash:  hash,
		Role:          in.Role,
		EmailVerified: true,
		Preferences:   domain.DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created by admin")
	return created, nil
}

func (s *userService) Update(ctx context.Context, id string, in ports.AdminUserUpdate) (*domain.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.ValidationFailed([]domain.FieldIssue{{Field: "role", Message: "unknown role"}})
	}
	return s.users.Update(ctx, id, domain.UserUpdate{Email: in.Email, Username: in.Username, Role: in.Role})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
