package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/internal/logging"
	"github.com/lborres/pinto/pkg/crypto"
)

// SessionManager is the Session Store capability: it mints session tokens,
// resolves them back to sessions and destroys them. The raw token only ever
// goes to the client; storage and cache are keyed by its sha256 hash.
type SessionManager struct {
	config core.SessionConfig
	store  core.SessionStore
	cache  core.Cache // optional, nil disables caching
	nanoid *crypto.NanoIDGenerator
	logger logging.Logger
	now    func() time.Time
}

var _ core.SessionManager = (*SessionManager)(nil)

func NewSessionManager(config core.SessionConfig, store core.SessionStore, cache core.Cache, logger logging.Logger) *SessionManager {
	defaults := core.DefaultSessionConfig()
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = defaults.PruneInterval
	}
	if config.CookieName == "" {
		config.CookieName = defaults.CookieName
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &SessionManager{
		config: config,
		store:  store,
		cache:  cache,
		nanoid: crypto.NewNanoID(),
		logger: logger,
		now:    time.Now,
	}
}

// WithClock swaps the time source used for expiry.
func (sm *SessionManager) WithClock(now func() time.Time) *SessionManager {
	sm.now = now
	return sm
}

func (sm *SessionManager) Config() core.SessionConfig {
	return sm.config
}

func (sm *SessionManager) Create(ctx context.Context, userID int64, ip, userAgent string) (*core.CreateSessionResult, error) {
	pair, err := crypto.GenerateHashedToken(crypto.DefaultTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	sessionID, err := sm.nanoid.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := sm.now()
	session := &core.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if sm.cache != nil {
		if err := sm.cache.Set(pair.Hash, session); err != nil {
			sm.logger.Warn(ctx, "session cache set failed", "session_id", session.ID, "error", err)
		}
	}

	return &core.CreateSessionResult{Session: session, Token: pair.Token}, nil
}

// Resolve maps a raw session token to its live session. Expired sessions are
// removed on sight.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrSessionNotFound
	}

	tokenHash := crypto.HashToken(token)
	now := sm.now()

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			if session.Expired(now) {
				sm.evict(ctx, tokenHash)
				return nil, core.ErrSessionExpired
			}
			return session, nil
		}
	}

	session, err := sm.store.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, core.ErrSessionNotFound
	}

	if session.Expired(now) {
		sm.evict(ctx, tokenHash)
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Destroy removes the session behind token. Unknown and empty tokens are not
// an error.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	if err := sm.store.DeleteSessionByHash(ctx, tokenHash); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Prune deletes expired sessions from the backing store.
func (sm *SessionManager) Prune(ctx context.Context) (int, error) {
	n, err := sm.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return n, nil
}

// StartPruning runs Prune every PruneInterval until ctx is done or stop is
// called. stop blocks until the loop has exited and is safe to call twice.
func (sm *SessionManager) StartPruning(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(sm.config.PruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sm.Prune(ctx)
				if err != nil {
					sm.logger.Error(ctx, "session prune failed", "error", err)
					continue
				}
				if n > 0 {
					sm.logger.Info(ctx, "pruned expired sessions", "count", n)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
		<-done
	}
}

func (sm *SessionManager) evict(ctx context.Context, tokenHash string) {
	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}
	if err := sm.store.DeleteSessionByHash(ctx, tokenHash); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		sm.logger.Warn(ctx, "failed to delete expired session", "error", err)
	}
}
