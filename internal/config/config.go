// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Image strategies accepted by CV_IMAGE_STRATEGY.
const (
	ImageStrategyInline     = "inline"
	ImageStrategyFilesystem = "filesystem"
	ImageStrategyS3         = "s3"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CV_DB_PATH" envDefault:"./data/campusvoice.db"`
	SessionSecret string `env:"CV_SESSION_SECRET,required"`
	ServerHost    string `env:"CV_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CV_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CV_ENV" envDefault:"development"`
	LogLevel      string `env:"CV_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"CV_UPLOADS_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"CV_PUBLIC_BASE_URL"` // Prefix for stored upload URLs, empty means site-relative

	// Image ingestion
	ImageStrategy string `env:"CV_IMAGE_STRATEGY" envDefault:"inline"`
	S3Bucket      string `env:"CV_S3_BUCKET"`
	S3Region      string `env:"CV_S3_REGION"`
	S3Endpoint    string `env:"CV_S3_ENDPOINT"`   // Custom endpoint for S3-compatible storage
	S3PublicURL   string `env:"CV_S3_PUBLIC_URL"` // Public URL prefix for stored objects
	S3AccessKey   string `env:"CV_S3_ACCESS_KEY"`
	S3SecretKey   string `env:"CV_S3_SECRET_KEY"`

	// Cache configuration
	RedisURL     string `env:"CV_REDIS_URL"`                                 // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CV_CACHE_PREFIX" envDefault:"campusvoice:"`    // Redis key prefix
	CacheTTL     int    `env:"CV_CACHE_TTL" envDefault:"300"`                // Default cache TTL in seconds
	CacheMaxSize int    `env:"CV_CACHE_MAX_SIZE" envDefault:"10000"`         // Max memory cache entries

	// Contact intake
	CORSAllowedOrigins []string `env:"CV_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080,http://localhost:3000"`
	AdminEmail         string   `env:"CV_ADMIN_EMAIL" envDefault:"admin@example.com"`
	MailFrom           string   `env:"CV_MAIL_FROM" envDefault:"CampusVoice <noreply@campusvoice.com>"`
	MailAPIKey         string   `env:"CV_MAIL_API_KEY"`
	MailAPIURL         string   `env:"CV_MAIL_API_URL" envDefault:"https://api.resend.com/emails"`
	ContactRateLimit   float64  `env:"CV_CONTACT_RATE_LIMIT" envDefault:"0.2"`
	ContactRateBurst   int      `env:"CV_CONTACT_RATE_BURST" envDefault:"5"`

	// Editing sessions
	EditorIdleTimeout time.Duration `env:"CV_EDITOR_IDLE_TIMEOUT" envDefault:"2h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MailEnabled returns true if outbound mail delivery is configured.
func (c Config) MailEnabled() bool {
	return c.MailAPIKey != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validateSecret(); err != nil {
		return nil, err
	}

	if err := cfg.validateImageStrategy(); err != nil {
		return nil, err
	}

	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSAllowedOrigins = origins
	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, errors.New("CV_CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if cfg.EditorIdleTimeout <= 0 {
		return nil, fmt.Errorf("CV_EDITOR_IDLE_TIMEOUT must be positive, got %s", cfg.EditorIdleTimeout)
	}

	return cfg, nil
}

func (c *Config) validateSecret() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CV_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("CV_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("CV_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) validateImageStrategy() error {
	c.ImageStrategy = strings.ToLower(strings.TrimSpace(c.ImageStrategy))
	switch c.ImageStrategy {
	case ImageStrategyInline, ImageStrategyFilesystem:
		return nil
	case ImageStrategyS3:
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("CV_IMAGE_STRATEGY=s3 requires CV_S3_BUCKET and CV_S3_REGION")
		}
		return nil
	default:
		return fmt.Errorf("CV_IMAGE_STRATEGY must be one of inline, filesystem, s3; got %q", c.ImageStrategy)
	}
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
