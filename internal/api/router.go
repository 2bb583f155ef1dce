package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/wamunyima3/CloudScribe/internal/api/handler"
	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/ws"
)

// Config holds the HTTP-facing settings of the router.
type Config struct {
	CORSOrigins []string
	Cookie      handler.CookieConfig
	BodyLimit   string

	// GlobalRateLimit caps requests per IP across /api. Zero disables it.
	GlobalRateLimit  int
	GlobalRateWindow time.Duration
	// AuthRateLimit caps register, login and email-sending endpoints per IP.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	EnableSwagger bool
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// Deps are the services and stores the routes need.
type Deps struct {
	Log   zerolog.Logger
	Table *rbac.Table

	Tokens    ports.TokenService
	UserRepo  ports.UserRepository
	Denylist  ports.Denylist
	AuditRepo ports.AuditRepository
	Limiter   middleware.Limiter // nil disables per-route limits

	Auth          ports.AuthService
	Users         ports.UserService
	Words         ports.WordService
	Stories       ports.StoryService
	Notifications ports.NotificationService
	Hub           *ws.Hub

	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It fails when a route declaration is inconsistent.
func NewRouter(cfg Config, d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "cloudscribe",
		Subsystem:  "http",
		Registerer: cfg.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || p == "/ws"
		},
	}))

	// --- Operational routes (no auth required) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	if cfg.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Guarded routes ---
	auth := middleware.NewAuthenticator(d.Tokens, d.UserRepo, d.Denylist, d.Log)
	var auditor *middleware.Auditor
	if d.AuditRepo != nil {
		auditor = middleware.NewAuditor(d.AuditRepo, d.Log)
	}
	guard := middleware.NewGuard(auth, d.Table, auditor, d.Log)

	apiGroup := e.Group("/api")
	if cfg.GlobalRateLimit > 0 {
		apiGroup.Use(middleware.GlobalRateLimit(cfg.GlobalRateLimit, cfg.GlobalRateWindow))
	}

	var limited []echo.MiddlewareFunc
	if d.Limiter != nil && cfg.AuthRateLimit > 0 {
		limited = append(limited, middleware.RateLimit(d.Limiter, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow, d.Log))
	}

	groups := []struct {
		prefix string
		routes []middleware.Route
	}{
		{"/auth", authRoutes(handler.NewAuthHandler(d.Auth, cfg.Cookie), limited)},
		{"/users", userRoutes(handler.NewUserHandler(d.Users))},
		{"/words", wordRoutes(handler.NewWordHandler(d.Words, d.Table))},
		{"/stories", storyRoutes(handler.NewStoryHandler(d.Stories, d.Table))},
		{"/notifications", notificationRoutes(handler.NewNotificationHandler(d.Notifications))},
	}
	for _, g := range groups {
		if err := guard.Register(apiGroup.Group(g.prefix), g.routes...); err != nil {
			return nil, err
		}
	}

	if d.Hub != nil {
		wsHandler := handler.NewWSHandler(d.Hub)
		if err := guard.Register(e, middleware.Route{Method: http.MethodGet, Path: "/ws", Handler: wsHandler.Connect}); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func perms(ps ...domain.Permission) []domain.Permission { return ps }

func authRoutes(h *handler.AuthHandler, limited []echo.MiddlewareFunc) []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodPost, Path: "/register", Public: true, Middleware: limited, Handler: h.Register},
		{Method: http.MethodPost, Path: "/login", Public: true, Middleware: limited, Handler: h.Login},
		{Method: http.MethodPost, Path: "/logout", Handler: h.Logout},
		{Method: http.MethodPost, Path: "/refresh-token", Handler: h.RefreshToken},
		{Method: http.MethodPost, Path: "/verify-email", Public: true, Handler: h.VerifyEmail},
		{Method: http.MethodPost, Path: "/resend-verification", Public: true, Middleware: limited, Handler: h.ResendVerification},
		{Method: http.MethodPost, Path: "/forgot-password", Public: true, Middleware: limited, Handler: h.ForgotPassword},
		{Method: http.MethodPost, Path: "/reset-password", Public: true, Handler: h.ResetPassword},
		{Method: http.MethodGet, Path: "/me", Handler: h.Me},
	}
}

func userRoutes(h *handler.UserHandler) []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodGet, Path: "/profile", Handler: h.Profile},
		{Method: http.MethodPut, Path: "/profile", Audit: "PROFILE_UPDATE", Handler: h.UpdateProfile},
		{Method: http.MethodPut, Path: "/preferences", Audit: "PREFERENCES_UPDATE", Handler: h.UpdatePreferences},
		{Method: http.MethodGet, Path: "/activity", Handler: h.Activity},
		{Method: http.MethodGet, Path: "/permissions", Handler: h.Permissions},
		{Method: http.MethodGet, Path: "/search", Permissions: perms(domain.PermUserRead), Handler: h.Search},
		{Method: http.MethodPost, Path: "", Permissions: perms(domain.PermUserManage), Audit: "USER_CREATE", Handler: h.Create},
		{Method: http.MethodPut, Path: "/:id", Permissions: perms(domain.PermUserManage), Audit: "USER_UPDATE", Handler: h.Update},
		{Method: http.MethodDelete, Path: "/:id", Permissions: perms(domain.PermUserDelete), Audit: "USER_DELETE", Handler: h.Delete},
	}
}

func wordRoutes(h *handler.WordHandler) []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodGet, Path: "/search", Public: true, Handler: h.Search},
		{Method: http.MethodGet, Path: "/:id", Public: true, Handler: h.Get},
		{Method: http.MethodPost, Path: "", Permissions: perms(domain.PermWordCreate), Audit: "WORD_CREATE", Handler: h.Create},
		{Method: http.MethodPut, Path: "/:id", Permissions: perms(domain.PermWordUpdate), Owner: h.Owner, Audit: "WORD_UPDATE", Handler: h.Update},
		{Method: http.MethodDelete, Path: "/:id", Permissions: perms(domain.PermWordDelete), Owner: h.Owner, Audit: "WORD_DELETE", Handler: h.Delete},
		{Method: http.MethodPost, Path: "/:id/approve", Permissions: perms(domain.PermWordApprove), Audit: "WORD_APPROVE", Handler: h.Approve},
		{Method: http.MethodPost, Path: "/:id/translations", Permissions: perms(domain.PermTranslationCreate), Audit: "TRANSLATION_CREATE", Handler: h.AddTranslation},
		{Method: http.MethodPut, Path: "/:id/translations/:tid", Permissions: perms(domain.PermTranslationUpdate), Owner: h.TranslationAuthor, Audit: "TRANSLATION_UPDATE", Handler: h.UpdateTranslation},
		{Method: http.MethodPost, Path: "/:id/translations/:tid/verify", Permissions: perms(domain.PermTranslationVerify), Audit: "TRANSLATION_VERIFY", Handler: h.VerifyTranslation},
	}
}

func storyRoutes(h *handler.StoryHandler) []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodGet, Path: "/search", Public: true, Handler: h.Search},
		{Method: http.MethodGet, Path: "/:id", Public: true, Handler: h.Get},
		{Method: http.MethodPost, Path: "", Permissions: perms(domain.PermStoryCreate), Audit: "STORY_CREATE", Handler: h.Create},
		{Method: http.MethodPut, Path: "/:id", Permissions: perms(domain.PermStoryUpdate), Owner: h.Owner, Audit: "STORY_UPDATE", Handler: h.Update},
		{Method: http.MethodDelete, Path: "/:id", Permissions: perms(domain.PermStoryDelete), Owner: h.Owner, Audit: "STORY_DELETE", Handler: h.Delete},
		{Method: http.MethodPost, Path: "/:id/moderate", Permissions: perms(domain.PermStoryModerate), Audit: "STORY_MODERATE", Handler: h.Moderate},
		{Method: http.MethodPost, Path: "/:id/comments", Permissions: perms(domain.PermStoryRead), Audit: "COMMENT_CREATE", Handler: h.AddComment},
		{Method: http.MethodDelete, Path: "/:id/comments/:cid", Permissions: perms(domain.PermStoryRead), Owner: h.CommentAuthor, Audit: "COMMENT_DELETE", Handler: h.DeleteComment},
		{Method: http.MethodPost, Path: "/:id/rate", Permissions: perms(domain.PermStoryRead), Audit: "STORY_RATE", Handler: h.Rate},
	}
}

func notificationRoutes(h *handler.NotificationHandler) []middleware.Route {
	return []middleware.Route{
		{Method: http.MethodGet, Path: "", Handler: h.List},
		{Method: http.MethodPut, Path: "/preferences", Handler: h.UpdatePreferences},
		{Method: http.MethodPut, Path: "/:id/read", Handler: h.MarkRead},
		{Method: http.MethodDelete, Path: "/:id", Handler: h.Delete},
	}
}
