package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

var errInvalidPayload = domain.NewError(domain.KindValidation, "invalid_payload", "Invalid request payload")

// ctxIdentity returns the caller attached by the authentication middleware.
// Handlers behind a protected route can rely on it; the check keeps a
// misrouted handler from running anonymously.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrAuthRequired
	}
	return id, nil
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload.WithCause(err)
	}
	return c.Validate(req)
}
