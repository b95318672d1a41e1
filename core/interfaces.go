package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// CREDENTIAL STORE PORT
// ============================================

// CredentialStore holds user records and their token state. Every mutation
// must be serialized so two requests racing on the same user or token cannot
// lose an update.
type CredentialStore interface {
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByGoogleID(googleID string) (*User, error)

	Create(u NewUser) (*User, error)
	Update(id int64, update UserUpdate) (*User, error)

	IssueVerificationToken(id int64) (string, error)
	ConsumeVerificationToken(token string) (*User, error)

	IssuePasswordResetToken(email string) (string, error)
	ConsumePasswordResetToken(token string) (*User, error)
	FinalizePasswordReset(id int64, passwordHash string) (*User, error)
}

// ============================================
// SESSION STORE PORT
// ============================================

// SessionStore persists sessions keyed by the hash of their token.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// SessionManager exposes the session capability: create a session for a
// user, resolve a token back to it, destroy it.
type SessionManager interface {
	Create(ctx context.Context, userID int64, ipAddress, userAgent string) (*CreateSessionResult, error)
	Resolve(ctx context.Context, token string) (*Session, error)
	Destroy(ctx context.Context, token string) error
	Prune(ctx context.Context) (int, error)
	StartPruning(ctx context.Context) (stop func())
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// CRYPTO PORTS
// ============================================

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// OpaqueTokens generates the single-use tokens stored on user records.
type OpaqueTokens interface {
	VerificationToken() (string, error)
	ResetToken() (string, error)
}

// BearerIssuer signs and verifies stateless bearer tokens.
type BearerIssuer interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}

// ============================================
// MAIL PORT
// ============================================

// Mailer delivers tokens out-of-band.
type Mailer interface {
	SendVerification(ctx context.Context, to *User, token string) error
	SendPasswordReset(ctx context.Context, to *User, token string) error
}

// ============================================
// AUTH HANDLER (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, input LoginInput, ipAddress, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context, sessionToken string) error
	VerifyEmail(ctx context.Context, token string) (*User, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	CompletePasswordReset(ctx context.Context, input ResetPasswordInput) error
	UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*User, error)
	ResolveSession(ctx context.Context, creds Credentials) (*User, error)
	ValidateToken(ctx context.Context, bearer string) bool
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(p *Pinto) error
}
