// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// Placeholders used outside production when the secrets are unset.
	DevJWTSecret     = "pinto-development-jwt-secret-change-me"
	DevSessionSecret = "pinto-development-session-secret-change-me"
)

var (
	ErrMissingSecret   = errors.New("secret must be set in production")
	ErrUnknownStore    = errors.New("unknown session store")
	ErrUnknownHasher   = errors.New("unknown password hasher")
	ErrUnknownMailer   = errors.New("unknown mail provider")
	ErrMissingRedisURL = errors.New("REDIS_URL is required for the redis session store")
	ErrMissingSendGrid = errors.New("SENDGRID_API_KEY and MAIL_FROM are required for the sendgrid mailer")
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string
	AppURL   string

	JWTSecret     string
	SessionSecret string
	BearerTTL     time.Duration
	ExposeTokens  bool

	SessionMaxAge        time.Duration
	SessionPruneInterval time.Duration
	SessionStore         string // memory | redis
	RedisURL             string
	SessionCacheTTL      time.Duration
	SessionCacheSize     int

	PasswordHasher string // bcrypt | argon2
	BcryptCost     int

	MailProvider   string // log | sendgrid
	SendGridAPIKey string
	MailFrom       string
}

func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads .env files (when present) and then the process environment.
// Variables already set in the environment win over .env values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	env := strings.ToLower(GetEnvAsString("APP_ENV", EnvDevelopment))
	production := env == EnvProduction

	cfg := &Config{
		Env:      env,
		HTTPAddr: GetEnvAsString("HTTP_ADDR", ":5000"),
		LogLevel: GetEnvAsString("LOG_LEVEL", "info"),
		AppURL:   strings.TrimRight(GetEnvAsString("APP_URL", "http://localhost:5000"), "/"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		BearerTTL:     GetEnvAsDuration("BEARER_TTL", 24*time.Hour),
		ExposeTokens:  GetEnvAsBool("EXPOSE_TOKENS", !production),

		SessionMaxAge:        GetEnvAsDuration("SESSION_MAX_AGE", 24*time.Hour),
		SessionPruneInterval: GetEnvAsDuration("SESSION_PRUNE_INTERVAL", 24*time.Hour),
		SessionStore:         strings.ToLower(GetEnvAsString("SESSION_STORE", "memory")),
		RedisURL:             os.Getenv("REDIS_URL"),
		SessionCacheTTL:      GetEnvAsDuration("SESSION_CACHE_TTL", 5*time.Minute),
		SessionCacheSize:     GetEnvAsInt("SESSION_CACHE_SIZE", 500),

		PasswordHasher: strings.ToLower(GetEnvAsString("PASSWORD_HASHER", "bcrypt")),
		BcryptCost:     GetEnvAsInt("BCRYPT_COST", 10),

		MailProvider:   strings.ToLower(GetEnvAsString("MAIL_PROVIDER", "log")),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
	}

	if err := cfg.applySecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets falls back to the development placeholders, except in
// production where unset secrets are fatal.
func (c *Config) applySecrets() error {
	if c.Production() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET: %w", ErrMissingSecret)
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET: %w", ErrMissingSecret)
		}
		return nil
	}
	if c.JWTSecret == "" {
		c.JWTSecret = DevJWTSecret
	}
	if c.SessionSecret == "" {
		c.SessionSecret = DevSessionSecret
	}
	return nil
}

// UsingPlaceholderSecrets reports whether either secret fell back to a placeholder.
func (c *Config) UsingPlaceholderSecrets() bool {
	return c.JWTSecret == DevJWTSecret || c.SessionSecret == DevSessionSecret
}

func (c *Config) Validate() error {
	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.SessionStore)
	}

	switch c.PasswordHasher {
	case "bcrypt", "argon2":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHasher, c.PasswordHasher)
	}

	switch c.MailProvider {
	case "log":
	case "sendgrid":
		if c.SendGridAPIKey == "" || c.MailFrom == "" {
			return ErrMissingSendGrid
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMailer, c.MailProvider)
	}

	return nil
}
