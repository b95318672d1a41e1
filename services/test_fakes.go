package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lborres/pinto/adapters/memory"
	"github.com/lborres/pinto/core"
)

// FakeSessionStore is a test-only fake implementing core.SessionStore.
// It stores sessions in a map and exposes error fields for behavior injection.
type FakeSessionStore struct {
	sessions  map[string]*core.Session
	mu        sync.RWMutex
	createErr error
	getErr    error
	deleteErr error
	pruneErr  error
	deletes   int
}

var _ core.SessionStore = (*FakeSessionStore)(nil)

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{
		sessions: make(map[string]*core.Session),
	}
}

func (f *FakeSessionStore) CreateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	c := *s
	f.sessions[s.TokenHash] = &c
	return nil
}

func (f *FakeSessionStore) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

func (f *FakeSessionStore) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *FakeSessionStore) DeleteExpiredSessions(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	now := time.Now()
	n := 0
	for k, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, k)
			n++
		}
	}
	return n, nil
}

func (f *FakeSessionStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// FakeCache is a test-only fake implementing core.Cache.
type FakeCache struct {
	cache  map[string]*core.Session
	mu     sync.RWMutex
	getErr error
	setErr error
	delErr error
	hits   int
	misses int
}

var _ core.Cache = (*FakeCache)(nil)

func NewFakeCache() *FakeCache {
	return &FakeCache{
		cache: make(map[string]*core.Session),
	}
}

func (f *FakeCache) Get(tokenHash string) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.cache[tokenHash]
	if !ok {
		f.misses++
		return nil, core.ErrCacheNotFound
	}
	f.hits++
	c := *s
	return &c, nil
}

func (f *FakeCache) Set(tokenHash string, session *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	c := *session
	f.cache[tokenHash] = &c
	return nil
}

func (f *FakeCache) Delete(tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.cache, tokenHash)
	return nil
}

func (f *FakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]*core.Session)
	return nil
}

func (f *FakeCache) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

// FakeCredentialStore wraps the in-memory store and lets tests fail
// individual operations.
type FakeCredentialStore struct {
	*memory.CredentialStore
	getErr    error
	createErr error
	updateErr error
	issueErr  error
}

var _ core.CredentialStore = (*FakeCredentialStore)(nil)

func NewFakeCredentialStore(opts ...memory.Option) *FakeCredentialStore {
	return &FakeCredentialStore{CredentialStore: memory.NewCredentialStore(opts...)}
}

func (f *FakeCredentialStore) GetByEmail(email string) (*core.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.CredentialStore.GetByEmail(email)
}

func (f *FakeCredentialStore) Create(u core.NewUser) (*core.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.CredentialStore.Create(u)
}

func (f *FakeCredentialStore) Update(id int64, update core.UserUpdate) (*core.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.CredentialStore.Update(id, update)
}

func (f *FakeCredentialStore) IssuePasswordResetToken(email string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return f.CredentialStore.IssuePasswordResetToken(email)
}

// fakeHasher is a fast, reversible stand-in for bcrypt.
type fakeHasher struct {
	hashErr error
}

func (h fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h fakeHasher) Verify(password, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hash == "hashed:"+password, nil
}

// FakeMailer records deliveries and can be told to fail.
type FakeMailer struct {
	mu      sync.Mutex
	sendErr error
	sent    []SentMail
}

type SentMail struct {
	Kind  string
	To    string
	Token string
}

var _ core.Mailer = (*FakeMailer)(nil)

func (m *FakeMailer) SendVerification(_ context.Context, to *core.User, token string) error {
	return m.record("verification", to, token)
}

func (m *FakeMailer) SendPasswordReset(_ context.Context, to *core.User, token string) error {
	return m.record("reset", to, token)
}

func (m *FakeMailer) record(kind string, to *core.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, SentMail{Kind: kind, To: to.Email, Token: token})
	return nil
}

func (m *FakeMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}
