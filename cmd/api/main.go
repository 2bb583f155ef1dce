// @title           CloudScribe API
// @version         1.0
// @description     Community dictionary and story platform with role-based access control.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/wamunyima3/CloudScribe/docs"
	"github.com/wamunyima3/CloudScribe/internal/api"
	"github.com/wamunyima3/CloudScribe/internal/api/handler"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
	"github.com/wamunyima3/CloudScribe/internal/core/service"
	mongodb "github.com/wamunyima3/CloudScribe/internal/infrastructure/db/mongo"
	redisdb "github.com/wamunyima3/CloudScribe/internal/infrastructure/db/redis"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/mail"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/queue"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/scheduler"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/security"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/ws"
	"github.com/wamunyima3/CloudScribe/internal/pkg/config"
	"github.com/wamunyima3/CloudScribe/pkg/logger"
)

const (
	mailWorkers     = 4
	shutdownTimeout = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "cloudscribe",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := mongodb.NewUserRepository(db)
	wordRepo := mongodb.NewWordRepository(db)
	storyRepo := mongodb.NewStoryRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, wordRepo, storyRepo, notificationRepo, auditRepo); err != nil {
		return err
	}

	cache := redisdb.NewCache(redisClient, "cloudscribe")
	denylist := redisdb.NewDenylist(redisClient)
	limiter := redisdb.NewFixedWindowLimiter(redisClient)

	// --- Security ---
	table := rbac.DefaultTable(rbac.WithLogger(logger.Component("rbac")))
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, security.WithIssuer(cfg.Auth.TokenIssuer))
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// --- Mail ---
	mailer, err := newMailSender(cfg.SMTP)
	if err != nil {
		return err
	}
	dispatcher := queue.NewMailDispatcher(mailWorkers, mailer, logger.Component("mail"))
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	// --- Realtime ---
	hub := ws.NewHub(logger.Component("ws"), ws.WithOriginCheck(allowOrigins(cfg.HTTP.CORSOrigins)))
	defer hub.Close()

	// --- Services ---
	notifications := service.NewNotificationService(notificationRepo, userRepo, hub, cache, logger.Component("notifications"))
	authService := service.NewAuthService(userRepo, tokens, hasher, denylist, security.NewSecretGenerator(), dispatcher, service.AuthOptions{
		RequireEmailVerified: cfg.Auth.RequireEmailVerified,
		FrontendURL:          cfg.HTTP.FrontendURL,
	}, logger.Component("auth"))
	users := service.NewUserService(userRepo, auditRepo, hasher, table, logger.Component("users"))
	words := service.NewWordService(wordRepo, userRepo, notifications, dispatcher, cache, table, logger.Component("words"))
	stories := service.NewStoryService(storyRepo, userRepo, notifications, dispatcher, table, logger.Component("stories"))

	// --- Background jobs ---
	jobs := scheduler.New(logger.Component("scheduler"))
	digest := service.NewDigest(userRepo, auditRepo, dispatcher, logger.Component("digest"))
	if err := jobs.Add("weekly-digest", cfg.DigestSchedule, digest); err != nil {
		return err
	}
	jobs.Start()

	// --- HTTP ---
	e, err := api.NewRouter(api.Config{
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		Cookie:           handler.CookieConfig{Secure: cfg.HTTP.CookieSecure, Domain: cfg.HTTP.CookieDomain},
		BodyLimit:        cfg.HTTP.BodyLimit,
		GlobalRateLimit:  cfg.RateLimit.Requests,
		GlobalRateWindow: cfg.RateLimit.Window,
		AuthRateLimit:    cfg.RateLimit.AuthRequests,
		AuthRateWindow:   cfg.RateLimit.AuthWindow,
		EnableSwagger:    cfg.HTTP.EnableSwagger,
	}, api.Deps{
		Log:           logger.Component("http"),
		Table:         table,
		Tokens:        tokens,
		UserRepo:      userRepo,
		Denylist:      denylist,
		AuditRepo:     auditRepo,
		Limiter:       limiter,
		Auth:          authService,
		Users:         users,
		Words:         words,
		Stories:       stories,
		Notifications: notifications,
		Hub:           hub,
		Checks: map[string]handler.Check{
			"mongo": mongodb.Check(mongoClient),
			"redis": redisdb.Check(redisClient),
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler did not stop in time")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func newMailSender(cfg config.SMTPConfig) (ports.Mailer, error) {
	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, err
	}
	if cfg.Host == "" {
		return mail.NewLogSender(renderer, logger.Component("mail")), nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
	}, renderer)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// allowOrigins accepts websocket upgrades from the configured CORS origins and
// from clients that send no Origin header.
func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := allowed[u.Scheme+"://"+u.Host]
		return ok
	}
}
