package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const resetWindow = time.Hour

// AuthOptions carries policy knobs for AuthService.
type AuthOptions struct {
	RequireEmailVerified bool
	FrontendURL          string
	Now                  func() time.Time
}

type authService struct {
	users    ports.UserRepository
	tokens   ports.TokenService
	hasher   ports.PasswordHasher
	denylist ports.Denylist
	secrets  ports.SecretGenerator
	mailer   ports.Mailer
	opts     AuthOptions
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	denylist ports.Denylist,
	secrets ports.SecretGenerator,
	mailer ports.Mailer,
	opts AuthOptions,
	log zerolog.Logger,
) ports.AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &authService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		denylist: denylist,
		secrets:  secrets,
		mailer:   mailer,
		opts:     opts,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	plain, verifyHash, err := s.secrets.New()
	if err != nil {
		return nil, fmt.Errorf("register: verify token: %w", err)
	}

	now := s.opts.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Preferences:  domain.DefaultPreferences(),
		VerifyToken:  verifyHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, created.Email, ports.MailVerification, map[string]any{
		"Username": created.Username,
		"Link":     s.link("/verify-email", plain),
	})
	return created, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	res, err := s.login(ctx, email, password)
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	return res, err
}

func loginResult(err error) string {
	if err == nil {
		return "success"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}

func (s *authService) login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if s.opts.RequireEmailVerified && !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	issued, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	now := s.opts.Now().UTC()
	updated, err := s.users.Update(ctx, user.ID, domain.UserUpdate{LastLoginDate: &now, LastActive: &now})
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login time")
		updated = user
	}
	return &ports.LoginResult{Token: issued, User: updated}, nil
}

func (s *authService) Logout(ctx context.Context, id domain.Identity) error {
	if id.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Refresh issues a new token for the caller's current role and retires the
// presented one.
func (s *authService) Refresh(ctx context.Context, id domain.Identity) (ports.IssuedToken, error) {
	user, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.IssuedToken{}, domain.ErrAccountGone
		}
		return ports.IssuedToken{}, err
	}
	issued, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("refresh: issue token: %w", err)
	}
	if id.TokenID != "" {
		if err := s.denylist.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to revoke refreshed token")
		}
	}
	return issued, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidVerifyToken
	}
	_, err := s.users.ConsumeVerifyToken(ctx, s.secrets.Hash(token))
	return err
}

// ResendVerification always succeeds from the caller's point of view.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	plain, hash, err := s.secrets.New()
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{VerifyToken: &hash}); err != nil {
		return err
	}
	s.sendMail(ctx, user.Email, ports.MailVerification, map[string]any{
		"Username": user.Username,
		"Link":     s.link("/verify-email", plain),
	})
	return nil
}

// ForgotPassword opens a new reset window, replacing any earlier one.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	plain, hash, err := s.secrets.New()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	exp := s.opts.Now().UTC().Add(resetWindow)
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{ResetToken: &hash, ResetTokenExp: &exp}); err != nil {
		return err
	}
	s.sendMail(ctx, user.Email, ports.MailPasswordReset, map[string]any{
		"Username": user.Username,
		"Link":     s.link("/reset-password", plain),
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrInvalidResetToken
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: hash: %w", err)
	}
	_, err = s.users.ConsumeResetToken(ctx, s.secrets.Hash(token), hash, s.opts.Now().UTC())
	return err
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *authService) link(path, token string) string {
	return s.opts.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

// sendMail never fails the calling operation.
func (s *authService) sendMail(ctx context.Context, to, tmpl string, data map[string]any) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, ports.Mail{To: to, Template: tmpl, Data: data}); err != nil {
		s.log.Error().Err(err).Str("template", tmpl).Msg("failed to queue email")
	}
}
