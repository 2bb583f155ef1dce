package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

type stubAuthService struct {
	ports.AuthService

	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, id domain.Identity) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, id domain.Identity) error {
	return s.logoutFn(ctx, id)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "a@example.com" || in.Password != "s3cretpass" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return &domain.User{ID: "u1", Username: in.Username, Email: in.Email, Role: domain.RoleUser, PasswordHash: "hash"}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"s3cretpass","email":"a@example.com"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decode(t, rec)
	user, ok := resp["data"].(map[string]any)
	if !ok || resp["success"] != true {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if user["username"] != "alice" || user["role"] != "USER" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationNeverReachesService(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"username":"a","password":"short","email":"nope"}`)
	err := h.Register(c)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, d := range de.Details {
		fields[d.Field] = true
	}
	if !fields["username"] || !fields["password"] || !fields["email"] {
		t.Fatalf("expected issues for every field, got %+v", de.Details)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"username":"bob","password":"s3cretpass","email":"b@example.com"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newTestEcho()
	exp := time.Now().Add(time.Hour)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{
				Token: ports.IssuedToken{Token: "jwt-token", ID: "jti", ExpiresAt: exp},
				User:  &domain.User{ID: "u1", Email: email, Username: "alice", Role: domain.RoleUser},
			}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{Secure: true})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"s3cretpass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decode(t, rec)["data"].(map[string]any)
	if data["token"] != "jwt-token" {
		t.Fatalf("expected token in body, got %+v", data)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != middleware.TokenCookie || ck.Value != "jwt-token" || !ck.HttpOnly || !ck.Secure || ck.MaxAge <= 0 {
		t.Fatalf("unexpected cookie %+v", ck)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie on failure")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	var got domain.Identity
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, id domain.Identity) error {
			got = id
			return nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected auth required without identity, got %v", err)
	}

	c, rec = jsonRequest(e, http.MethodPost, "/api/auth/logout", "")
	c.Set(middleware.IdentityKey, domain.Identity{UserID: "u1", TokenID: "jti"})
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got.TokenID != "jti" {
		t.Fatalf("service did not get identity: %+v", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cookies)
	}
}
