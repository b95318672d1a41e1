package memory

import (
	"fmt"
	"sync"

	"github.com/lborres/pinto/core"
)

// CredentialStore keeps users in a map guarded by a single RWMutex: every
// mutation, including token issue and consume, runs under the write lock.
// Records are copied in and out so callers never alias stored state.
type CredentialStore struct {
	mu         sync.RWMutex
	users      map[int64]*core.User
	byEmail    map[string]int64
	byUsername map[string]int64
	nextID     int64
	opts       options
}

var _ core.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore(opts ...Option) *CredentialStore {
	return &CredentialStore{
		users:      make(map[int64]*core.User),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
		nextID:     1,
		opts:       buildOptions(opts),
	}
}

func (s *CredentialStore) GetByID(id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *CredentialStore) GetByUsername(username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byUsername, username)
}

func (s *CredentialStore) GetByEmail(email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byEmail, email)
}

func (s *CredentialStore) GetByGoogleID(googleID string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.find(func(u *core.User) bool {
		return u.GoogleID != nil && *u.GoogleID == googleID
	})
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	return u.Clone(), nil
}

// Create assigns the next sequential id. Uniqueness is checked again under
// the write lock so concurrent registrations cannot both succeed.
func (s *CredentialStore) Create(nu core.NewUser) (*core.User, error) {
	if nu.Password == "" {
		return nil, fmt.Errorf("create user: %w", core.NewValidationError("password", "password hash is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[nu.Email]; taken {
		return nil, core.ErrEmailTaken
	}
	if _, taken := s.byUsername[nu.Username]; taken {
		return nil, core.ErrUsernameTaken
	}

	u := &core.User{
		ID:        s.nextID,
		Username:  nu.Username,
		Email:     nu.Email,
		Password:  nu.Password,
		Name:      nu.Name,
		GoogleID:  nu.GoogleID,
		CreatedAt: s.opts.now(),
	}
	s.nextID++

	stored := u.Clone()
	s.users[u.ID] = stored
	s.byEmail[u.Email] = u.ID
	s.byUsername[u.Username] = u.ID

	return u, nil
}

func (s *CredentialStore) Update(id int64, update core.UserUpdate) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	if update.Username != nil && *update.Username != u.Username {
		if owner, taken := s.byUsername[*update.Username]; taken && owner != id {
			return nil, core.ErrUsernameTaken
		}
		delete(s.byUsername, u.Username)
		u.Username = *update.Username
		s.byUsername[u.Username] = id
	}
	if update.Name != nil {
		name := *update.Name
		u.Name = &name
	}
	if update.GoogleID != nil {
		gid := *update.GoogleID
		u.GoogleID = &gid
	}

	return u.Clone(), nil
}

func (s *CredentialStore) IssueVerificationToken(id int64) (string, error) {
	tok, err := s.opts.tokens.VerificationToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return "", core.ErrUserNotFound
	}
	u.VerificationToken = &tok
	return tok, nil
}

// ConsumeVerificationToken marks the owner verified and clears the token in
// the same critical section as the lookup.
func (s *CredentialStore) ConsumeVerificationToken(tok string) (*core.User, error) {
	if tok == "" {
		return nil, core.ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.find(func(u *core.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == tok
	})
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	u.EmailVerified = true
	u.VerificationToken = nil
	return u.Clone(), nil
}

func (s *CredentialStore) IssuePasswordResetToken(email string) (string, error) {
	tok, err := s.opts.tokens.ResetToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return "", core.ErrUserNotFound
	}
	u := s.users[id]
	expires := s.opts.now().Add(s.opts.resetTTL)
	u.ResetPasswordToken = &tok
	u.ResetPasswordExpires = &expires
	return tok, nil
}

// ConsumePasswordResetToken resolves a live reset token. Expired tokens read
// as not found but stay on the record.
func (s *CredentialStore) ConsumePasswordResetToken(tok string) (*core.User, error) {
	if tok == "" {
		return nil, core.ErrUserNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.find(func(u *core.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == tok
	})
	if u == nil {
		return nil, core.ErrUserNotFound
	}
	if u.ResetPasswordExpires != nil && u.ResetPasswordExpires.Before(s.opts.now()) {
		return nil, core.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *CredentialStore) FinalizePasswordReset(id int64, passwordHash string) (*core.User, error) {
	if passwordHash == "" {
		return nil, fmt.Errorf("finalize reset: %w", core.NewValidationError("password", "password hash is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	u.Password = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return u.Clone(), nil
}

// Len returns the number of stored users.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *CredentialStore) lookup(index map[string]int64, key string) (*core.User, error) {
	id, ok := index[key]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// find scans every record; callers hold the lock. Map order is irrelevant
// because token values are unique.
func (s *CredentialStore) find(match func(*core.User) bool) *core.User {
	for _, u := range s.users {
		if match(u) {
			return u
		}
	}
	return nil
}
