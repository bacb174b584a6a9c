package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"3000"`
	MongoURI   string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DBName     string `env:"MONGODB_DB" envDefault:"bookstore"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevMode bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`
	AllowBulkReset     bool          `env:"ALLOW_BULK_RESET" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	S3Bucket      string `env:"AWS_S3_BUCKET"`
	S3Region      string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3AccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	GoogleBooksURL string `env:"GOOGLE_BOOKS_API_URL" envDefault:"https://www.googleapis.com/books/v1/volumes"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must differ from JWT_SECRET"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleCallbackURL != ""
}

func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseCredentialsFile != ""
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}
