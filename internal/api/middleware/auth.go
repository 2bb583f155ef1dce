package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const (
	// TokenCookie is the HTTP-only cookie carrying the bearer token.
	TokenCookie = "token"
	// SubprotocolPrefix marks a token passed as a WebSocket subprotocol.
	SubprotocolPrefix = "token."
)

// Authenticator resolves the caller of a request from its bearer token.
type Authenticator struct {
	tokens   ports.TokenService
	users    ports.UserRepository
	denylist ports.Denylist
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthenticator builds the authentication middleware. denylist may be nil,
// in which case revocation is not checked.
func NewAuthenticator(tokens ports.TokenService, users ports.UserRepository, denylist ports.Denylist, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, denylist: denylist, now: time.Now, log: log}
}

// Required rejects requests without a valid token with 401. On success the
// identity is attached and lastActive is updated.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := a.authenticate(c)
			if err != nil {
				return err
			}
			setIdentity(c, id)

			if err := a.users.UpdateLastActive(c.Request().Context(), id.UserID, a.now()); err != nil {
				a.log.Warn().Err(err).Str("user_id", id.UserID).Msg("update last active")
			}
			return next(c)
		}
	}
}

// Optional attaches the identity when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if TokenFrom(c) == "" {
				return next(c)
			}
			if id, err := a.authenticate(c); err == nil {
				setIdentity(c, id)
			}
			return next(c)
		}
	}
}

func (a *Authenticator) authenticate(c echo.Context) (domain.Identity, error) {
	raw := TokenFrom(c)
	if raw == "" {
		metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
		return domain.Identity{}, domain.ErrAuthRequired
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		a.reject(c, err)
		return domain.Identity{}, err
	}

	ctx := c.Request().Context()
	if a.denylist != nil {
		revoked, err := a.denylist.IsRevoked(ctx, claims.TokenID)
		switch {
		case err != nil:
			a.log.Warn().Err(err).Str("request_id", requestID(c)).Msg("denylist unavailable, skipping revocation check")
		case revoked:
			a.reject(c, domain.ErrTokenRevoked)
			return domain.Identity{}, domain.ErrTokenRevoked
		}
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		a.reject(c, domain.ErrAccountGone)
		return domain.Identity{}, domain.ErrAccountGone
	}
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (a *Authenticator) reject(c echo.Context, err error) {
	reason := "invalid_token"
	var de *domain.Error
	if errors.As(err, &de) {
		reason = de.Code
	}
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	a.log.Warn().
		Str("reason", reason).
		Str("request_id", requestID(c)).
		Str("path", c.Path()).
		Msg("authentication rejected")
}

// TokenFrom extracts the bearer token. The Authorization header wins over a
// WebSocket subprotocol, which wins over the cookie.
func TokenFrom(c echo.Context) string {
	req := c.Request()
	if h := req.Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if p := Subprotocol(c); p != "" {
		return strings.TrimPrefix(p, SubprotocolPrefix)
	}
	if ck, err := c.Cookie(TokenCookie); err == nil {
		return ck.Value
	}
	return ""
}

// Subprotocol returns the offered "token.<jwt>" WebSocket subprotocol, if any.
func Subprotocol(c echo.Context) string {
	for _, v := range c.Request().Header.Values("Sec-WebSocket-Protocol") {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, SubprotocolPrefix) {
				return p
			}
		}
	}
	return ""
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func detached(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request().Context()), 5*time.Second)
}
