package middleware

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/security"
)

func runRequired(t *testing.T, f *fixture, c echo.Context) (domain.Identity, bool, error) {
	t.Helper()
	var got domain.Identity
	called := false
	err := f.auth.Required()(func(c echo.Context) error {
		called = true
		got, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return got, called, err
}

func TestRequired_ValidBearer(t *testing.T) {
	f := newFixture()
	tok := f.token(alice)
	c, _ := newContext(http.MethodGet, "/", bearer(tok.Token))

	id, called, err := runRequired(t, f, c)
	if err != nil || !called {
		t.Fatalf("expected success, got err=%v called=%v", err, called)
	}
	if id.UserID != alice.ID || id.Role != domain.RoleContributor || id.Username != "alice" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.TokenID != tok.ID || !id.ExpiresAt.Equal(tok.ExpiresAt.Truncate(time.Second)) {
		t.Fatalf("token metadata not carried: %+v vs %+v", id, tok)
	}
	if f.users.lastActive() != 1 {
		t.Fatalf("expected lastActive update")
	}
}

func TestRequired_Cookie(t *testing.T) {
	f := newFixture()
	c, _ := newContext(http.MethodGet, "/", http.Header{"Cookie": []string{TokenCookie + "=" + f.token(bob).Token}})

	id, called, err := runRequired(t, f, c)
	if err != nil || !called || id.UserID != bob.ID {
		t.Fatalf("cookie auth failed: %v", err)
	}
}

func TestRequired_HeaderWinsOverCookie(t *testing.T) {
	f := newFixture()
	h := bearer("not-a-jwt")
	h.Set("Cookie", TokenCookie+"="+f.token(bob).Token)
	c, _ := newContext(http.MethodGet, "/", h)

	_, called, err := runRequired(t, f, c)
	if called || !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected header token to be used, got %v", err)
	}
}

func TestRequired_Subprotocol(t *testing.T) {
	f := newFixture()
	h := http.Header{"Sec-Websocket-Protocol": []string{"json, " + SubprotocolPrefix + f.token(alice).Token}}
	c, _ := newContext(http.MethodGet, "/ws", h)

	id, _, err := runRequired(t, f, c)
	if err != nil || id.UserID != alice.ID {
		t.Fatalf("subprotocol auth failed: %v", err)
	}
}

func TestRequired_RejectsWithoutSideEffects(t *testing.T) {
	expired := security.NewJWTService(testSecret, time.Hour, security.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	old, _ := expired.Issue(alice.ID, alice.Role)
	other, _ := security.NewJWTService("another-secret-another-secret-!!", time.Hour).Issue(alice.ID, alice.Role)

	cases := []struct {
		name   string
		header http.Header
		want   error
	}{
		{"missing", nil, domain.ErrAuthRequired},
		{"wrong scheme", http.Header{echo.HeaderAuthorization: []string{"Token abc"}}, domain.ErrAuthRequired},
		{"malformed", bearer("abc"), domain.ErrTokenMalformed},
		{"expired", bearer(old.Token), domain.ErrTokenExpired},
		{"bad signature", bearer(other.Token), domain.ErrTokenBadSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			c, _ := newContext(http.MethodGet, "/", tc.header)
			_, called, err := runRequired(t, f, c)
			if called {
				t.Fatalf("next must not run")
			}
			if !errors.Is(err, tc.want) || statusOf(err) != http.StatusUnauthorized {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if f.users.lastActive() != 0 {
				t.Fatalf("lastActive must not be written on rejection")
			}
		})
	}
}

func TestRequired_Revoked(t *testing.T) {
	f := newFixture()
	tok := f.token(alice)
	f.denylist.revoked[tok.ID] = true
	c, _ := newContext(http.MethodGet, "/", bearer(tok.Token))

	if _, called, err := runRequired(t, f, c); called || !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked, got %v", err)
	}
}

func TestRequired_DenylistOutageFailsOpen(t *testing.T) {
	f := newFixture()
	f.denylist.err = errors.New("redis down")
	c, _ := newContext(http.MethodGet, "/", bearer(f.token(alice).Token))

	if _, called, err := runRequired(t, f, c); err != nil || !called {
		t.Fatalf("expected fail open, got %v", err)
	}
}

func TestRequired_UserGone(t *testing.T) {
	f := newFixture()
	tok, _ := f.tokens.Issue("u-deleted", domain.RoleUser)
	c, _ := newContext(http.MethodGet, "/", bearer(tok.Token))

	_, called, err := runRequired(t, f, c)
	if called || !errors.Is(err, domain.ErrAccountGone) || statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected account gone 401, got %v", err)
	}
}

func TestRequired_LastActiveFailureIgnored(t *testing.T) {
	f := newFixture()
	f.users.failLast = true
	c, _ := newContext(http.MethodGet, "/", bearer(f.token(alice).Token))

	if _, called, err := runRequired(t, f, c); err != nil || !called {
		t.Fatalf("lastActive failure must not fail request: %v", err)
	}
}

func TestRequired_RoleComesFromStore(t *testing.T) {
	f := newFixture()
	// Token minted while alice was a plain user; the store now says CONTRIBUTOR.
	tok, _ := f.tokens.Issue(alice.ID, domain.RoleUser)
	c, _ := newContext(http.MethodGet, "/", bearer(tok.Token))

	id, _, err := runRequired(t, f, c)
	if err != nil || id.Role != domain.RoleContributor {
		t.Fatalf("expected stored role, got %v %v", id.Role, err)
	}
}

func TestOptional(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name   string
		header http.Header
		wantID string
	}{
		{"anonymous", nil, ""},
		{"invalid token", bearer("garbage"), ""},
		{"valid token", bearer(f.token(bob).Token), bob.ID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet, "/", tc.header)
			var got string
			err := f.auth.Optional()(func(c echo.Context) error {
				id, _ := IdentityFrom(c)
				got = id.UserID
				return nil
			})(c)
			if err != nil || got != tc.wantID {
				t.Fatalf("got id %q err %v, want %q", got, err, tc.wantID)
			}
		})
	}
	if f.users.lastActive() != 0 {
		t.Fatalf("optional auth must not write lastActive")
	}
}

func TestNewAuthenticator_NilDenylist(t *testing.T) {
	f := newFixture()
	a := NewAuthenticator(f.tokens, f.users, nil, zerolog.Nop())
	c, _ := newContext(http.MethodGet, "/", bearer(f.token(alice).Token))
	if err := a.Required()(func(echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
