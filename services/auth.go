package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/internal/logging"
)

// AuthService is the authentication engine. It owns the account lifecycle
// (registered, verified, authenticated, reset pending) and delegates
// persistence to the injected credential store.
type AuthService struct {
	store    core.CredentialStore
	hasher   core.PasswordHasher
	bearer   core.BearerIssuer
	sessions core.SessionManager
	mailer   core.Mailer // optional
	logger   logging.Logger

	mailTimeout time.Duration
	inflight    sync.WaitGroup

	dummyOnce sync.Once
	dummyHash string
}

// DefaultMailTimeout bounds a single background delivery.
const DefaultMailTimeout = 30 * time.Second

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(store core.CredentialStore, hasher core.PasswordHasher, bearer core.BearerIssuer, sessions core.SessionManager) *AuthService {
	return &AuthService{
		store:       store,
		hasher:      hasher,
		bearer:      bearer,
		sessions:    sessions,
		logger:      logging.Discard(),
		mailTimeout: DefaultMailTimeout,
	}
}

// WithMailer sets where verification and reset tokens are delivered.
func (s *AuthService) WithMailer(m core.Mailer) *AuthService {
	s.mailer = m
	return s
}

// WithMailTimeout bounds each background delivery. Non-positive values keep
// the current timeout.
func (s *AuthService) WithMailTimeout(d time.Duration) *AuthService {
	if d > 0 {
		s.mailTimeout = d
	}
	return s
}

func (s *AuthService) WithLogger(l logging.Logger) *AuthService {
	if l != nil {
		s.logger = l
	}
	return s
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password return the same ErrInvalidCredentials; a correct pair on an
// unverified account returns ErrEmailNotVerified.
func (s *AuthService) Authenticate(email, password string) (*core.User, error) {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, core.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		// burn a comparable amount of time so the miss is not observable
		_, _ = s.hasher.Verify(password, s.dummy())
		return nil, core.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, core.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, core.ErrEmailNotVerified
	}

	return user, nil
}

func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.RegisterResult, error) {
	// Step 1: uniqueness pre-check, email first
	if err := s.ensureFree(s.store.GetByEmail(input.Email)); err != nil {
		return nil, emailConflict(err)
	}
	if err := s.ensureFree(s.store.GetByUsername(input.Username)); err != nil {
		return nil, usernameConflict(err)
	}

	// Step 2: hash
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: create, the store rechecks uniqueness under its lock
	user, err := s.store.Create(core.NewUser{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Name:     input.Name,
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 4: verification token, delivered out-of-band
	token, err := s.store.IssueVerificationToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue verification token: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	s.deliver(ctx, "verification", func(ctx context.Context, m core.Mailer) error {
		return m.SendVerification(ctx, user, token)
	})

	return &core.RegisterResult{User: user, VerificationToken: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input core.LoginInput, ipAddress, userAgent string) (*core.LoginResult, error) {
	user, err := s.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) || errors.Is(err, core.ErrEmailNotVerified) {
			s.logger.Warn(ctx, "login rejected", "reason", err.Error(), "ip", ipAddress)
		}
		return nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	bearer, err := s.bearer.Issue(user.ID)
	if err != nil {
		// don't leave an orphan session behind
		_ = s.sessions.Destroy(ctx, session.Token)
		return nil, fmt.Errorf("failed to issue bearer token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID, "session_id", session.Session.ID)

	return &core.LoginResult{
		User:         user,
		Session:      session.Session,
		SessionToken: session.Token,
		Token:        bearer,
	}, nil
}

// Logout destroys the session behind sessionToken. A missing or unknown
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	if err := s.sessions.Destroy(ctx, sessionToken); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	user, err := s.store.ConsumeVerificationToken(token)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return user, nil
}

// ResendVerification re-issues a verification token. Unknown and already
// verified emails yield an empty token and no error.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user.EmailVerified {
		return "", nil
	}

	token, err := s.store.IssueVerificationToken(user.ID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to issue verification token: %w", err)
	}

	s.deliver(ctx, "verification", func(ctx context.Context, m core.Mailer) error {
		return m.SendVerification(ctx, user, token)
	})
	return token, nil
}

// RequestPasswordReset issues a reset token when the email exists. Callers
// must answer identically whether or not a token came back.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.store.IssuePasswordResetToken(email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to issue reset token: %w", err)
	}

	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	s.deliver(ctx, "password reset", func(ctx context.Context, m core.Mailer) error {
		return m.SendPasswordReset(ctx, user, token)
	})
	return token, nil
}

func (s *AuthService) CompletePasswordReset(ctx context.Context, input core.ResetPasswordInput) error {
	if input.Token == "" {
		return core.ErrInvalidOrExpiredToken
	}

	user, err := s.store.ConsumePasswordResetToken(input.Token)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to resolve reset token: %w", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.store.FinalizePasswordReset(user.ID, hashed); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, input core.ProfileInput) (*core.User, error) {
	update := core.UserUpdate{Name: input.Name, Username: input.Username}
	if update.Empty() {
		return nil, core.ErrNoFieldsUpdate
	}

	if update.Username != nil {
		holder, err := s.store.GetByUsername(*update.Username)
		switch {
		case err == nil && holder.ID != userID:
			return nil, core.ErrUsernameTaken
		case err != nil && !errors.Is(err, core.ErrUserNotFound):
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	user, err := s.store.Update(userID, update)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) || errors.Is(err, core.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", user.ID)
	return user, nil
}

// ResolveSession maps request credentials to the owning user. The session
// cookie wins; a Bearer token is tried when the cookie is absent or dead.
func (s *AuthService) ResolveSession(ctx context.Context, creds core.Credentials) (*core.User, error) {
	if creds.SessionToken != "" {
		session, err := s.sessions.Resolve(ctx, creds.SessionToken)
		switch {
		case err == nil:
			return s.userFor(session.UserID)
		case !errors.Is(err, core.ErrSessionNotFound) && !errors.Is(err, core.ErrSessionExpired):
			return nil, fmt.Errorf("failed to resolve session: %w", err)
		}
	}

	if creds.BearerToken != "" {
		userID, err := s.bearer.Verify(creds.BearerToken)
		if err == nil {
			return s.userFor(userID)
		}
	}

	return nil, core.ErrUnauthenticated
}

// ValidateToken reports whether bearer carries a valid signature and has not
// expired. No other state is consulted.
func (s *AuthService) ValidateToken(_ context.Context, bearer string) bool {
	if bearer == "" {
		return false
	}
	_, err := s.bearer.Verify(bearer)
	return err == nil
}

func (s *AuthService) userFor(id int64) (*core.User, error) {
	user, err := s.store.GetByID(id)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ensureFree turns a lookup result into nil when nothing matched.
func (s *AuthService) ensureFree(_ *core.User, err error) error {
	switch {
	case err == nil:
		return core.ErrConflict
	case errors.Is(err, core.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// deliver hands a token to the mailer in the background, so a request for a
// known account takes as long as one for an unknown account. Failures are
// only logged.
func (s *AuthService) deliver(ctx context.Context, kind string, send func(context.Context, core.Mailer) error) {
	if s.mailer == nil {
		return
	}

	// outlive the request, but not forever
	mailer, logger := s.mailer, s.logger
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mailTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := send(ctx, mailer); err != nil {
			logger.Error(ctx, "mail delivery failed", "kind", kind, "error", err)
		}
	}()
}

// Drain blocks until background mail deliveries have finished.
func (s *AuthService) Drain() {
	s.inflight.Wait()
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("pinto-timing-equalizer")
	})
	return s.dummyHash
}

func emailConflict(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return core.ErrEmailTaken
	}
	return fmt.Errorf("failed to check existing email: %w", err)
}

func usernameConflict(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return core.ErrUsernameTaken
	}
	return fmt.Errorf("failed to check existing username: %w", err)
}
