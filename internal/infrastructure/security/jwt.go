package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

const DefaultIssuer = "cloudscribe"

// JWTService issues and verifies HS256 bearer tokens. It holds no mutable
// state after construction.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type JWTOption func(*JWTService)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

func WithIssuer(iss string) JWTOption {
	return func(s *JWTService) {
		if iss != "" {
			s.issuer = iss
		}
	}
}

func NewJWTService(secret string, ttl time.Duration, opts ...JWTOption) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &JWTService{secret: []byte(secret), ttl: ttl, issuer: DefaultIssuer, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type accessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *JWTService) Issue(userID string, role domain.Role) (ports.IssuedToken, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	id := uuid.NewString()

	claims := accessClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return ports.IssuedToken{}, err
	}
	return ports.IssuedToken{Token: signed, ID: id, ExpiresAt: exp}, nil
}

func (s *JWTService) Verify(token string) (*ports.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired.WithCause(err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed.WithCause(err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenBadSignature.WithCause(err)
		default:
			return nil, domain.ErrInvalidToken.WithCause(err)
		}
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	out := &ports.TokenClaims{
		UserID:    claims.UserID,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
