// Package memory provides in-process implementations of the credential
// and session stores. Nothing survives a restart.
package memory

import (
	"time"

	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/pkg/token"
)

const DefaultResetTTL = time.Hour

type options struct {
	tokens   core.OpaqueTokens
	now      func() time.Time
	resetTTL time.Duration
}

type Option func(*options)

// WithTokens overrides the generator for verification and reset tokens.
func WithTokens(t core.OpaqueTokens) Option {
	return func(o *options) { o.tokens = t }
}

// WithClock overrides the time source for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithResetTTL sets how long a password-reset token stays usable.
func WithResetTTL(ttl time.Duration) Option {
	return func(o *options) { o.resetTTL = ttl }
}

func buildOptions(opts []Option) options {
	o := options{
		tokens:   token.Opaque{},
		now:      time.Now,
		resetTTL: DefaultResetTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
