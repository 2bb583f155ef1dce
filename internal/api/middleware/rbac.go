package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

// OwnerResolver returns the owner id of the resource a request targets. A
// not-found error is returned to the client as is.
type OwnerResolver func(c echo.Context) (ownerID string, err error)

// RequirePermissions allows the request when the caller's role holds all of
// perms, or any of them when anyOf is set.
func RequirePermissions(table *rbac.Table, perms []domain.Permission, anyOf bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrAuthRequired
			}

			allowed := table.RequireAll(id.Role, perms)
			if anyOf {
				allowed = table.RequireAny(id.Role, perms)
			}
			if !allowed {
				metrics.AuthzDeniedTotal.WithLabelValues("permission").Inc()
				log.Info().
					Str("user_id", id.UserID).
					Str("role", string(id.Role)).
					Str("path", c.Path()).
					Msg("permission denied")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireOwnership allows the owner of the resource and ADMIN.
func RequireOwnership(resolve OwnerResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrAuthRequired
			}

			ownerID, err := resolve(c)
			if err != nil {
				return err
			}
			if !rbac.RequireOwnership(id, ownerID) {
				metrics.AuthzDeniedTotal.WithLabelValues("ownership").Inc()
				log.Info().
					Str("user_id", id.UserID).
					Str("path", c.Path()).
					Msg("ownership denied")
				return domain.ErrNotOwner
			}
			return next(c)
		}
	}
}
