package pinto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/pinto/internal/config"
	"github.com/lborres/pinto/services"
)

const (
	jwtSecret     = "jwt-secret-at-least-thirty-two-chars"
	sessionSecret = "session-secret-at-least-thirty-two"
)

type mockHTTPAdapter struct {
	got *Pinto
	err error
}

func (m *mockHTTPAdapter) RegisterRoutes(p *Pinto) error {
	m.got = p
	return m.err
}

func validConfig() (Config, *mockHTTPAdapter) {
	http := &mockHTTPAdapter{}
	return Config{
		Secret:        jwtSecret,
		SessionSecret: sessionSecret,
		HTTP:          http,
	}, http
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing secret", func(c *Config) { c.Secret = "" }, ErrSecretRequired},
		{"short secret", func(c *Config) { c.Secret = "short" }, ErrSecretTooShort},
		{"missing session secret", func(c *Config) { c.SessionSecret = "" }, ErrSessionSecretRequired},
		{"short session secret", func(c *Config) { c.SessionSecret = strings.Repeat("s", MinSecretLength-1) }, ErrSecretTooShort},
		{"missing http adapter", func(c *Config) { c.HTTP = nil }, ErrHTTPAdapterRequired},
		{"placeholder jwt secret in production", func(c *Config) {
			c.Production = true
			c.Secret = config.DevJWTSecret
		}, ErrInsecureSecret},
		{"placeholder session secret in production", func(c *Config) {
			c.Production = true
			c.SessionSecret = config.DevSessionSecret
		}, ErrInsecureSecret},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			cfg, _ := validConfig()
			test.mutate(&cfg)

			// Act
			p, err := New(cfg)

			// Assert
			assert.Nil(t, p)
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestNew_PlaceholdersAllowedOutsideProduction(t *testing.T) {
	cfg, _ := validConfig()
	cfg.Secret = config.DevJWTSecret
	cfg.SessionSecret = config.DevSessionSecret

	_, err := New(cfg)

	assert.NoError(t, err)
}

func TestNew_Defaults(t *testing.T) {
	cfg, http := validConfig()

	p, err := New(cfg)

	require.NoError(t, err)
	assert.Same(t, p, http.got)
	assert.Equal(t, DefaultBasePath, p.BasePath)
	assert.Equal(t, DefaultSessionConfig(), p.Session)
	assert.Equal(t, sessionSecret, p.SessionSecret)
	assert.False(t, p.SecureCookies)
	assert.False(t, p.ExposeTokens)
	assert.NotNil(t, p.Auth)
	assert.NotNil(t, p.Sessions)
	assert.NotNil(t, p.Logger)
	assert.Len(t, p.Endpoints.Endpoints(), 10)
}

func TestNew_Overrides(t *testing.T) {
	cfg, _ := validConfig()
	cfg.Production = true
	cfg.ExposeTokens = true
	cfg.BasePath = "/auth"
	cfg.SessionConfig = &SessionConfig{MaxAge: time.Hour}

	p, err := New(cfg)

	require.NoError(t, err)
	assert.True(t, p.SecureCookies)
	assert.True(t, p.ExposeTokens)
	assert.Equal(t, "/auth", p.BasePath)
	assert.Equal(t, time.Hour, p.Session.MaxAge)
	assert.Equal(t, DefaultSessionConfig().CookieName, p.Session.CookieName)
	assert.Equal(t, DefaultSessionConfig().PruneInterval, p.Session.PruneInterval)
}

func TestNew_RegisterRoutesError(t *testing.T) {
	cfg, http := validConfig()
	http.err = errors.New("route conflict")

	p, err := New(cfg)

	assert.Nil(t, p)
	assert.ErrorContains(t, err, "route conflict")
}

func TestCacheFor(t *testing.T) {
	assert.Nil(t, CacheFor(0, 10))
	assert.NotNil(t, CacheFor(time.Minute, 10))
}

// Requirement: Drain returns only after mail queued by a request is out.
func TestPinto_DrainWaitsForMail(t *testing.T) {
	// Arrange
	cfg, _ := validConfig()
	mailer := &services.FakeMailer{}
	cfg.Mailer = mailer
	cfg.PasswordHasher = NewBcrypt(4)
	p, err := New(cfg)
	require.NoError(t, err)

	// Act
	_, err = p.Auth.Register(t.Context(), RegisterInput{Username: "alice", Email: "alice@x.com", Password: "P@ssw0rd1"})
	require.NoError(t, err)
	p.Drain()

	// Assert
	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@x.com", sent[0].To)
}
