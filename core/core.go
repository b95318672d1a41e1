package core

import (
	"time"

	"github.com/lborres/pinto/internal/logging"
)

type Config struct {
	Secret        string // signs bearer tokens
	SessionSecret string // encrypts the session cookie
	Production    bool

	HTTP HTTPAdapter

	// Optional config
	Credentials    CredentialStore
	Sessions       SessionStore
	CacheAdapter   Cache
	SessionConfig  *SessionConfig
	PasswordHasher PasswordHasher
	Mailer         Mailer
	Logger         logging.Logger
	BearerTTL      time.Duration
	BasePath       string
	ExposeTokens   bool // include verification/reset tokens in responses (demo mode)
}

type SessionConfig struct {
	MaxAge        time.Duration
	PruneInterval time.Duration
	CookieName    string
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge:        24 * time.Hour,
		PruneInterval: 24 * time.Hour,
		CookieName:    "pinto_session",
	}
}

// Pinto is what HTTP adapters receive when registering routes.
type Pinto struct {
	Auth          AuthHandler
	Sessions      SessionManager
	Endpoints     EndpointProvider
	Logger        logging.Logger
	BasePath      string
	SessionSecret string
	Session       SessionConfig
	SecureCookies bool
	ExposeTokens  bool
}

// Drain waits for background work the auth engine started, such as mail
// deliveries still in flight.
func (p *Pinto) Drain() {
	if d, ok := p.Auth.(interface{ Drain() }); ok {
		d.Drain()
	}
}
