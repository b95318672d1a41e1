// Package pinto is an email/password authentication core with
// server-side sessions and signed bearer tokens.
//
// New wires the credential store, password hasher, token issuer, session
// manager and authentication engine together and hands them to an HTTP
// adapter for route registration.
package pinto

import (
	"fmt"
	"time"

	"github.com/lborres/pinto/adapters/memory"
	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/internal/config"
	"github.com/lborres/pinto/internal/logging"
	"github.com/lborres/pinto/pkg/cache"
	"github.com/lborres/pinto/pkg/crypto"
	"github.com/lborres/pinto/pkg/token"
	"github.com/lborres/pinto/services"
)

// interfaces
type (
	CredentialStore = core.CredentialStore
	SessionStore    = core.SessionStore
	SessionManager  = core.SessionManager
	Cache           = core.Cache
	PasswordHasher  = core.PasswordHasher
	BearerIssuer    = core.BearerIssuer
	Mailer          = core.Mailer
	AuthHandler     = core.AuthHandler
	HTTPAdapter     = core.HTTPAdapter
	Logger          = logging.Logger
)

// structs
type (
	Pinto         = core.Pinto
	Config        = core.Config
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	Endpoint      = core.Endpoint
)

type (
	User               = core.User
	Session            = core.Session
	Credentials        = core.Credentials
	RegisterInput      = core.RegisterInput
	LoginInput         = core.LoginInput
	EmailInput         = core.EmailInput
	ResetPasswordInput = core.ResetPasswordInput
	ProfileInput       = core.ProfileInput
	ValidateTokenInput = core.ValidateTokenInput
	ValidationError    = core.ValidationError
	MessageResponse    = core.MessageResponse
)

const (
	DefaultBasePath = "/api/auth"
	MinSecretLength = 32
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	NewBcrypt            = crypto.NewBcrypt
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrConflict      = core.ErrConflict
	ErrEmailTaken    = core.ErrEmailTaken
	ErrUsernameTaken = core.ErrUsernameTaken
	ErrUserNotFound  = core.ErrUserNotFound
)

var (
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrEmailNotVerified   = core.ErrEmailNotVerified
	ErrUnauthenticated    = core.ErrUnauthenticated
)

var (
	ErrInvalidToken          = core.ErrInvalidToken
	ErrInvalidOrExpiredToken = core.ErrInvalidOrExpiredToken
	ErrInvalidBearerToken    = core.ErrInvalidBearerToken
	ErrSessionNotFound       = core.ErrSessionNotFound
	ErrSessionExpired        = core.ErrSessionExpired
)

var (
	ErrValidation     = core.ErrValidation
	ErrNoFieldsUpdate = core.ErrNoFieldsUpdate
)

var (
	ErrHTTPAdapterRequired   = core.ErrHTTPAdapterRequired
	ErrSecretRequired        = core.ErrSecretRequired
	ErrSecretTooShort        = core.ErrSecretTooShort
	ErrSessionSecretRequired = core.ErrSessionSecretRequired
	ErrInsecureSecret        = core.ErrInsecureSecret
)

// New validates the configuration, fills in defaults and registers routes
// on the HTTP adapter.
func New(cfg Config) (*Pinto, error) {
	if err := checkSecrets(cfg); err != nil {
		return nil, err
	}
	if cfg.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	credentials := cfg.Credentials
	if credentials == nil {
		credentials = memory.NewCredentialStore()
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		sessionStore = memory.NewSessionStore()
	}

	sessionConfig := DefaultSessionConfig()
	if cfg.SessionConfig != nil {
		sessionConfig = *cfg.SessionConfig
	}

	hasher := cfg.PasswordHasher
	if hasher == nil {
		hasher = crypto.NewBcrypt(crypto.DefaultBcryptCost)
	}

	basePath := cfg.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}

	sessions := services.NewSessionManager(sessionConfig, sessionStore, cfg.CacheAdapter, logger)
	issuer := token.NewIssuer(cfg.Secret, cfg.BearerTTL)

	auth := services.NewAuthService(credentials, hasher, issuer, sessions).
		WithLogger(logger)
	if cfg.Mailer != nil {
		auth.WithMailer(cfg.Mailer)
	}

	p := &Pinto{
		Auth:          auth,
		Sessions:      sessions,
		Endpoints:     services.NewEndpointRegistry(),
		Logger:        logger,
		BasePath:      basePath,
		SessionSecret: cfg.SessionSecret,
		Session:       sessions.Config(),
		SecureCookies: cfg.Production,
		ExposeTokens:  cfg.ExposeTokens,
	}

	if err := cfg.HTTP.RegisterRoutes(p); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return p, nil
}

func checkSecrets(cfg Config) error {
	if cfg.Secret == "" {
		return ErrSecretRequired
	}
	if len(cfg.Secret) < MinSecretLength {
		return fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if cfg.SessionSecret == "" {
		return ErrSessionSecretRequired
	}
	if len(cfg.SessionSecret) < MinSecretLength {
		return fmt.Errorf("session %w - minimum of %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if cfg.Production && (cfg.Secret == config.DevJWTSecret || cfg.SessionSecret == config.DevSessionSecret) {
		return ErrInsecureSecret
	}
	return nil
}

// CacheFor returns the session cache the server puts in front of a remote
// session store, or nil when ttl disables caching.
func CacheFor(ttl time.Duration, size int) Cache {
	if ttl <= 0 {
		return nil
	}
	return cache.NewInMemoryCache(CacheConfig{TTL: ttl, MaxSize: size})
}
