package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/security"
)

const testSecret = "test-secret-test-secret-test-secret!"

type stubUsers struct {
	ports.UserRepository // unimplemented methods panic

	mu       sync.Mutex
	users    map[string]*domain.User
	lastAct  int
	failLast bool
}

func newStubUsers(users ...*domain.User) *stubUsers {
	s := &stubUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *stubUsers) UpdateLastActive(_ context.Context, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAct++
	if s.failLast {
		return errors.New("db down")
	}
	return nil
}

func (s *stubUsers) lastActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAct
}

type stubDenylist struct {
	revoked map[string]bool
	err     error
}

func (d *stubDenylist) Revoke(_ context.Context, id string, _ time.Time) error {
	d.revoked[id] = true
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.revoked[id], nil
}

type stubAudit struct {
	ports.AuditRepository

	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (a *stubAudit) Insert(_ context.Context, e *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

var (
	alice = &domain.User{ID: "u-alice", Email: "alice@x.io", Username: "alice", Role: domain.RoleContributor}
	bob   = &domain.User{ID: "u-bob", Email: "bob@x.io", Username: "bob", Role: domain.RoleUser}
	root  = &domain.User{ID: "u-root", Email: "root@x.io", Username: "root", Role: domain.RoleAdmin}
)

type fixture struct {
	tokens   *security.JWTService
	users    *stubUsers
	denylist *stubDenylist
	auth     *Authenticator
}

func newFixture() *fixture {
	f := &fixture{
		tokens:   security.NewJWTService(testSecret, time.Hour),
		users:    newStubUsers(alice, bob, root),
		denylist: &stubDenylist{revoked: map[string]bool{}},
	}
	f.auth = NewAuthenticator(f.tokens, f.users, f.denylist, zerolog.Nop())
	return f
}

func (f *fixture) token(u *domain.User) ports.IssuedToken {
	tok, err := f.tokens.Issue(u.ID, u.Role)
	if err != nil {
		panic(err)
	}
	return tok
}

func newContext(method, target string, header http.Header) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func bearer(tok string) http.Header {
	return http.Header{echo.HeaderAuthorization: []string{"Bearer " + tok}}
}

// statusOf mirrors the API error handler's kind mapping.
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.NoContent(statusOf(err))
	}
	return e
}
