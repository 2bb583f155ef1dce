package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

// Route declares an endpoint and its access policy.
type Route struct {
	Method string
	Path   string
	// Public routes skip authentication but still see the caller's identity
	// when a valid token is sent.
	Public      bool
	Permissions []domain.Permission
	// AnyOf accepts any single permission instead of all of them.
	AnyOf   bool
	Owner   OwnerResolver
	Audit   string
	Handler echo.HandlerFunc
	// Middleware runs before authentication, e.g. rate limiting.
	Middleware []echo.MiddlewareFunc
}

// Router is satisfied by *echo.Echo and *echo.Group.
type Router interface {
	Add(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Guard turns route declarations into middleware chains:
// authenticate, permissions, ownership, audit, handler.
type Guard struct {
	auth    *Authenticator
	table   *rbac.Table
	auditor *Auditor
	log     zerolog.Logger
}

// NewGuard builds a Guard. auditor may be nil, in which case Route.Audit is
// ignored.
func NewGuard(auth *Authenticator, table *rbac.Table, auditor *Auditor, log zerolog.Logger) *Guard {
	return &Guard{auth: auth, table: table, auditor: auditor, log: log}
}

// Register validates every route and then adds them all to r. Nothing is
// registered when any route is invalid.
func (g *Guard) Register(r Router, routes ...Route) error {
	for _, rt := range routes {
		if err := validate(rt); err != nil {
			return err
		}
	}
	for _, rt := range routes {
		r.Add(rt.Method, rt.Path, rt.Handler, g.chain(rt)...)
	}
	return nil
}

func validate(rt Route) error {
	name := rt.Method + " " + rt.Path
	switch {
	case rt.Method == "":
		return domain.ConfigError("route %q: method is required", name)
	case rt.Handler == nil:
		return domain.ConfigError("route %q: handler is required", name)
	case rt.Public && len(rt.Permissions) > 0:
		return domain.ConfigError("route %q: public route declares permissions", name)
	case rt.Public && rt.Owner != nil:
		return domain.ConfigError("route %q: public route declares an owner check", name)
	case rt.Owner != nil && len(rt.Permissions) == 0:
		return domain.ConfigError("route %q: owner check without permissions", name)
	}
	for _, p := range rt.Permissions {
		if !p.Known() {
			return domain.ConfigError("route %q: unknown permission %q", name, p)
		}
	}
	return nil
}

func (g *Guard) chain(rt Route) []echo.MiddlewareFunc {
	mw := append([]echo.MiddlewareFunc{}, rt.Middleware...)
	if rt.Public {
		return append(mw, g.auth.Optional())
	}
	mw = append(mw, g.auth.Required())
	if len(rt.Permissions) > 0 {
		mw = append(mw, RequirePermissions(g.table, rt.Permissions, rt.AnyOf, g.log))
	}
	if rt.Owner != nil {
		mw = append(mw, RequireOwnership(rt.Owner, g.log))
	}
	if rt.Audit != "" && g.auditor != nil {
		mw = append(mw, g.auditor.Middleware(rt.Audit))
	}
	return mw
}
