package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSecretLen = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig

	DigestSchedule string `env:"DIGEST_SCHEDULE, default=0 0 * * 0"`
}

type AuthConfig struct {
	JWTSecret            string        `env:"JWT_SECRET, required"`
	TokenTTL             time.Duration `env:"TOKEN_TTL,              default=24h"`
	TokenIssuer          string        `env:"TOKEN_ISSUER,           default=cloudscribe"`
	RequireEmailVerified bool          `env:"REQUIRE_EMAIL_VERIFIED, default=true"`
	BcryptCost           int           `env:"BCRYPT_COST,            default=10"`
}

type HTTPConfig struct {
	CORSOrigins   []string `env:"CORS_ORIGIN,    default=http://localhost:3000"`
	FrontendURL   string   `env:"FRONTEND_URL,   default=http://localhost:3000"`
	CookieSecure  bool     `env:"COOKIE_SECURE,  default=false"`
	CookieDomain  string   `env:"COOKIE_DOMAIN"`
	BodyLimit     string   `env:"BODY_LIMIT,     default=1M"`
	EnableSwagger bool     `env:"ENABLE_SWAGGER, default=true"`
}

type RateLimitConfig struct {
	Requests     int           `env:"RATE_LIMIT_REQUESTS,      default=100"`
	Window       time.Duration `env:"RATE_LIMIT_WINDOW,        default=15m"`
	AuthRequests int           `env:"RATE_LIMIT_AUTH_REQUESTS, default=5"`
	AuthWindow   time.Duration `env:"RATE_LIMIT_AUTH_WINDOW,   default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cloudscribe"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// SMTPConfig leaves mail delivery disabled when Host is empty.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,      default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM,      default=noreply@cloudscribe.local"`
	FromName string `env:"SMTP_FROM_NAME, default=CloudScribe"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves the configuration against l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.RateLimit.Requests < 0 || c.RateLimit.AuthRequests < 0 {
		return errors.New("config: rate limits must not be negative")
	}
	return nil
}
