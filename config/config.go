package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Webhook   WebhookConfig
	Poller    PollerConfig
	RateLimit RateLimitConfig
	Health    HealthConfig
	Providers ProvidersConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	EnableTLS bool
}

type WebhookConfig struct {
	// PollfishSecret signs inbound completion webhooks. When unset the
	// receiver refuses deliveries; production refuses to start at all.
	PollfishSecret string
}

type PollerConfig struct {
	Interval     time.Duration
	ErrorBackoff time.Duration
}

type RateLimitConfig struct {
	WebhookMax    int
	WebhookWindow time.Duration
	AuthMax       int
	AuthWindow    time.Duration
}

type HealthConfig struct {
	// MemoryCeilingBytes marks the process degraded when heap-in-use crosses it.
	MemoryCeilingBytes uint64
}

// ProvidersConfig carries credentials and endpoint overrides for the provider gateways.
type ProvidersConfig struct {
	PollfishAPIKey  string
	PollfishBaseURL string
	CallbackBaseURL string // e.g. https://surveyhub.app - completion callbacks go to CallbackBaseURL + /api/pollfish/webhook
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "surveyhub:surveyhub@tcp(localhost:3306)/surveyhub?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "surveyhub",
		},
		SMTP: SMTPConfig{
			Host:      envOr("SMTP_HOST", ""),
			Port:      envIntOr("SMTP_PORT", 587),
			Username:  envOr("SMTP_USERNAME", ""),
			Password:  envOr("SMTP_PASSWORD", ""),
			FromEmail: envOr("SMTP_FROM_EMAIL", "no-reply@surveyhub.app"),
			FromName:  envOr("SMTP_FROM_NAME", "Survey Hub"),
			EnableTLS: true,
		},
		Webhook: WebhookConfig{
			PollfishSecret: envOr("POLLFISH_WEBHOOK_SECRET", ""),
		},
		Poller: PollerConfig{
			Interval:     30 * time.Minute,
			ErrorBackoff: 5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			WebhookMax:    100,
			WebhookWindow: time.Hour,
			AuthMax:       5,
			AuthWindow:    15 * time.Minute,
		},
		Health: HealthConfig{
			MemoryCeilingBytes: 512 << 20,
		},
		Providers: ProvidersConfig{
			PollfishAPIKey:  envOr("POLLFISH_API_KEY", ""),
			PollfishBaseURL: envOr("POLLFISH_BASE_URL", "https://api.pollfish.com/v2/"),
			CallbackBaseURL: envOr("CALLBACK_BASE_URL", "https://surveyhub.app"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
