package ports

import (
	"context"
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// IssuedToken is a signed bearer token and its metadata.
type IssuedToken struct {
	Token     string    `json:"token"`
	ID        string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims is what a verified token asserts.
type TokenClaims struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies bearer tokens. Verify failures are one of
// domain.ErrTokenExpired, ErrTokenMalformed, ErrTokenBadSignature or
// ErrInvalidToken.
type TokenService interface {
	Issue(userID string, role domain.Role) (IssuedToken, error)
	Verify(token string) (*TokenClaims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// Denylist holds revoked token ids until the tokens would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SecretGenerator produces single-use secrets for email links. Only the hash
// is stored.
type SecretGenerator interface {
	New() (plain, hash string, err error)
	Hash(plain string) string
}
