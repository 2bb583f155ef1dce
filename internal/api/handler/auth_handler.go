package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

// CookieConfig controls the auth cookie set on login and refresh.
type CookieConfig struct {
	Secure bool
	Domain string
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, now: time.Now}
}

// Register creates a new user account and sends a verification email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  dataResponse{data=domain.PublicUser}
// @Failure      400   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return successMessage(c, http.StatusCreated, "Registration successful. Please check your email to verify your account.", user.Public())
}

// Login authenticates a user and returns a JWT token. The token is also set
// as an HTTP-only cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  dataResponse{data=loginResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setCookie(c, res.Token)
	return success(c, http.StatusOK, loginResponse{
		Token:     res.Token.Token,
		ExpiresAt: res.Token.ExpiresAt.UTC(),
		User:      res.User.Public(),
	})
}

// Logout revokes the current token and clears the auth cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), id); err != nil {
		return err
	}
	h.clearCookie(c)
	return successMessage(c, http.StatusOK, "Logged out successfully", nil)
}

// RefreshToken exchanges the current token for a fresh one.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=tokenResponse}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	tok, err := h.authService.Refresh(c.Request().Context(), id)
	if err != nil {
		return err
	}
	h.setCookie(c, tok)
	return success(c, http.StatusOK, tokenResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt.UTC()})
}

// VerifyEmail consumes an email verification token.
//
// @Summary      Verify email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Verification token"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Email verified successfully", nil)
}

// ResendVerification sends a new verification email. It answers 200 whether or
// not the address is registered.
//
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  dataResponse
// @Router       /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "If the account exists and is unverified, a verification email has been sent", nil)
}

// ForgotPassword emails a password reset link. It answers 200 whether or not
// the address is registered.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  dataResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "If the account exists, a password reset email has been sent", nil)
}

// ResetPassword sets a new password using a reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "Password reset successfully", nil)
}

// Me returns the caller's public profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=domain.PublicUser}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user.Public())
}

func (h *AuthHandler) setCookie(c echo.Context, tok ports.IssuedToken) {
	maxAge := int(tok.ExpiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    tok.Token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
