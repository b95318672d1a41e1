package fiber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/pinto"
	"github.com/lborres/pinto/adapters/memory"
	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/services"
)

const (
	testSecret        = "test-jwt-secret-0123456789abcdef"
	testSessionSecret = "test-session-secret-0123456789ab"
)

type testServer struct {
	t     *testing.T
	app   *fiber.App
	p     *pinto.Pinto
	store *memory.CredentialStore
}

func newTestServer(t *testing.T, mutate func(*pinto.Config)) *testServer {
	t.Helper()

	app := fiber.New()
	store := memory.NewCredentialStore()
	cfg := pinto.Config{
		Secret:         testSecret,
		SessionSecret:  testSessionSecret,
		HTTP:           New(app),
		Credentials:    store,
		PasswordHasher: pinto.NewBcrypt(4),
		ExposeTokens:   true,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	p, err := pinto.New(cfg)
	require.NoError(t, err)

	return &testServer{t: t, app: app, p: p, store: store}
}

type response struct {
	status     int
	body       map[string]any
	cookies    []*http.Cookie
	setCookies []string
}

type reqOpt func(*http.Request)

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set(fiber.HeaderAuthorization, "Bearer "+token) }
}

func (s *testServer) do(method, path string, body any, opts ...reqOpt) response {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := s.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second, FailOnTimeout: true})
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	out := response{
		status:     resp.StatusCode,
		cookies:    resp.Cookies(),
		setCookies: resp.Header.Values(fiber.HeaderSetCookie),
	}
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &out.body), "body: %s", raw)
	}
	return out
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var alice = map[string]any{
	"username": "alice",
	"email":    "alice@x.com",
	"password": "P@ssw0rd1",
	"name":     "Alice",
}

// registerAndVerify runs register + verify-email for alice.
// The token is read from the store so this works with ExposeTokens off.
func (s *testServer) registerAndVerify() {
	s.t.Helper()
	reg := s.do(http.MethodPost, "/api/auth/register", alice)
	require.Equal(s.t, http.StatusCreated, reg.status)
	u, err := s.store.GetByEmail("alice@x.com")
	require.NoError(s.t, err)
	require.NotNil(s.t, u.VerificationToken)
	ver := s.do(http.MethodGet, "/api/auth/verify-email?token="+*u.VerificationToken, nil)
	require.Equal(s.t, http.StatusOK, ver.status)
}

// loginAlice logs in and returns the session cookie and bearer token.
func (s *testServer) loginAlice(password string) (*http.Cookie, string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": password})
	require.Equal(s.t, http.StatusOK, res.status, "%v", res.body)
	c := res.cookie(s.p.Session.CookieName)
	require.NotNil(s.t, c)
	token, _ := res.body["token"].(string)
	return c, token
}

// Requirement: register, verify, login and /me work end to end; the password
// never appears in a response.
func TestScenario_RegisterVerifyLoginMe(t *testing.T) {
	s := newTestServer(t, nil)

	// register
	reg := s.do(http.MethodPost, "/api/auth/register", alice)
	require.Equal(t, http.StatusCreated, reg.status)
	assert.Equal(t, msgRegistered, reg.body["message"])
	t1, _ := reg.body["verificationToken"].(string)
	require.NotEmpty(t, t1)

	// verify
	ver := s.do(http.MethodGet, "/api/auth/verify-email?token="+t1, nil)
	require.Equal(t, http.StatusOK, ver.status)
	assert.Equal(t, msgVerified, ver.body["message"])

	// login
	login := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": "P@ssw0rd1"})
	require.Equal(t, http.StatusOK, login.status)
	user := login.body["user"].(map[string]any)
	assert.Equal(t, true, user["emailVerified"])
	assert.NotContains(t, user, "password")
	bearer, _ := login.body["token"].(string)
	assert.NotEmpty(t, bearer)
	cookie := login.cookie(s.p.Session.CookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 24*60*60, cookie.MaxAge)

	// me via cookie
	me := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, "alice", me.body["username"])
	assert.Equal(t, "alice@x.com", me.body["email"])
	assert.Equal(t, user["id"], me.body["id"])
	assert.NotContains(t, me.body, "password")
	assert.NotContains(t, me.body, "verificationToken")

	// me via bearer
	meBearer := s.do(http.MethodGet, "/api/auth/me", nil, withBearer(bearer))
	require.Equal(t, http.StatusOK, meBearer.status)
	assert.Equal(t, "alice", meBearer.body["username"])
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"malformed json", "{", msgBadBody},
		{"weak password", map[string]any{"username": "bob", "email": "bob@x.com", "password": "password"}, "Validation error: Password must contain at least one uppercase letter"},
		{"bad email", map[string]any{"username": "bob", "email": "bob", "password": "P@ssw0rd1"}, "Validation error: Invalid email address"},
		{"short username", map[string]any{"username": "bo", "email": "bob@x.com", "password": "P@ssw0rd1"}, "Validation error: username must be at least 3 characters"},
		{"duplicate email", map[string]any{"username": "alice2", "email": "alice@x.com", "password": "P@ssw0rd1"}, "Email already in use"},
		{"duplicate username", map[string]any{"username": "alice", "email": "other@x.com", "password": "P@ssw0rd1"}, "Username already taken"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			s := newTestServer(t, nil)
			require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", alice).status)

			// Act
			res := s.do(http.MethodPost, "/api/auth/register", test.body)

			// Assert
			assert.Equal(t, http.StatusBadRequest, res.status)
			assert.Equal(t, test.wantMsg, res.body["message"])
			assert.Equal(t, 1, s.store.Len())
		})
	}
}

func TestRegister_HidesTokenOutsideDemoMode(t *testing.T) {
	s := newTestServer(t, func(c *pinto.Config) { c.ExposeTokens = false })

	res := s.do(http.MethodPost, "/api/auth/register", alice)

	require.Equal(t, http.StatusCreated, res.status)
	assert.NotContains(t, res.body, "verificationToken")
}

// Requirement: a wrong password and an unknown email produce identical
// responses; an unverified account gets its own message.
func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", alice).status)

	unverified := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": "P@ssw0rd1"})
	assert.Equal(t, http.StatusUnauthorized, unverified.status)
	assert.Equal(t, "Email not verified. Please check your inbox.", unverified.body["message"])
	assert.Nil(t, unverified.cookie(s.p.Session.CookieName))

	wrong := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": "Wr0ng!pass"})
	unknown := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "ghost@x.com", "password": "Wr0ng!pass"})
	assert.Equal(t, http.StatusUnauthorized, wrong.status)
	assert.Equal(t, wrong.status, unknown.status)
	assert.Equal(t, wrong.body, unknown.body)
	assert.Equal(t, "Incorrect email or password", wrong.body["message"])

	invalid := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, invalid.status)
}

// Requirement: a login password longer than 72 bytes is rejected even when
// its first 72 bytes are the real password.
func TestLogin_RejectsPasswordPastBcryptLimit(t *testing.T) {
	// Arrange
	s := newTestServer(t, nil)
	password := "Aa1@" + strings.Repeat("x", 68)
	body := map[string]any{"username": "alice", "email": "alice@x.com", "password": password}
	reg := s.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, reg.status, "%v", reg.body)
	token := reg.body["verificationToken"].(string)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/verify-email?token="+token, nil).status)

	// Act
	exact := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": password})
	longer := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": password + "!"})

	// Assert
	assert.Equal(t, http.StatusOK, exact.status)
	assert.NotEqual(t, http.StatusOK, longer.status)
	assert.Nil(t, longer.cookie(s.p.Session.CookieName))
}

func TestVerifyEmail_Failures(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/auth/verify-email", "/api/auth/verify-email?token=bogus"} {
		res := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, res.status, path)
		assert.Equal(t, "Invalid or expired verification token", res.body["message"], path)
	}
}

func TestVerifyEmail_TokenIsSingleUse(t *testing.T) {
	s := newTestServer(t, nil)
	reg := s.do(http.MethodPost, "/api/auth/register", alice)
	token := reg.body["verificationToken"].(string)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/verify-email?token="+token, nil).status)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/auth/verify-email?token="+token, nil).status)
}

func TestResendVerification(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", alice).status)

	known := s.do(http.MethodPost, "/api/auth/resend-verification", map[string]any{"email": "alice@x.com"})
	unknown := s.do(http.MethodPost, "/api/auth/resend-verification", map[string]any{"email": "ghost@x.com"})

	require.Equal(t, http.StatusOK, known.status)
	require.Equal(t, http.StatusOK, unknown.status)
	assert.Equal(t, known.body["message"], unknown.body["message"])
	assert.NotEmpty(t, known.body["verificationToken"])
	assert.NotContains(t, unknown.body, "verificationToken")

	ver := s.do(http.MethodGet, "/api/auth/verify-email?token="+known.body["verificationToken"].(string), nil)
	assert.Equal(t, http.StatusOK, ver.status)
}

// Requirement: forgot-password for an unknown email answers 200 with the
// generic message and no token field.
func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name      string
		expose    bool
		email     string
		wantToken bool
	}{
		{"unknown email", true, "ghost@x.com", false},
		{"known email in demo mode", true, "alice@x.com", true},
		{"known email outside demo mode", false, "alice@x.com", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			s := newTestServer(t, func(c *pinto.Config) { c.ExposeTokens = test.expose })
			s.registerAndVerify()

			// Act
			res := s.do(http.MethodPost, "/api/auth/forgot-password", map[string]any{"email": test.email})

			// Assert
			require.Equal(t, http.StatusOK, res.status)
			assert.Equal(t, msgResetRequested, res.body["message"])
			if test.wantToken {
				assert.NotEmpty(t, res.body["resetToken"])
			} else {
				assert.NotContains(t, res.body, "resetToken")
			}
		})
	}
}

func TestForgotPassword_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	res := s.do(http.MethodPost, "/api/auth/forgot-password", map[string]any{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Validation error: Invalid email address", res.body["message"])
}

func TestResetPassword(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndVerify()
	forgot := s.do(http.MethodPost, "/api/auth/forgot-password", map[string]any{"email": "alice@x.com"})
	token := forgot.body["resetToken"].(string)

	bad := s.do(http.MethodPost, "/api/auth/reset-password", map[string]any{"token": "bogus", "password": "N3w!Passw0rd"})
	assert.Equal(t, http.StatusBadRequest, bad.status)
	assert.Equal(t, "Invalid or expired reset token", bad.body["message"])

	weak := s.do(http.MethodPost, "/api/auth/reset-password", map[string]any{"token": token, "password": "short"})
	assert.Equal(t, http.StatusBadRequest, weak.status)

	ok := s.do(http.MethodPost, "/api/auth/reset-password", map[string]any{"token": token, "password": "N3w!Passw0rd"})
	require.Equal(t, http.StatusOK, ok.status)
	assert.Equal(t, msgResetDone, ok.body["message"])

	replay := s.do(http.MethodPost, "/api/auth/reset-password", map[string]any{"token": token, "password": "An0ther!pass"})
	assert.Equal(t, http.StatusBadRequest, replay.status)

	old := s.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "alice@x.com", "password": "P@ssw0rd1"})
	assert.Equal(t, http.StatusUnauthorized, old.status)
	s.loginAlice("N3w!Passw0rd")
}

// Requirement: logout twice in a row succeeds both times and the session
// stops working.
func TestLogout_Idempotent(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndVerify()
	cookie, _ := s.loginAlice("P@ssw0rd1")

	first := s.do(http.MethodGet, "/api/auth/logout", nil, withCookie(cookie))
	second := s.do(http.MethodGet, "/api/auth/logout", nil, withCookie(cookie))
	anonymous := s.do(http.MethodGet, "/api/auth/logout", nil)

	for _, res := range []response{first, second, anonymous} {
		assert.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, msgLoggedOut, res.body["message"])
	}

	for _, res := range []response{first, second, anonymous} {
		cleared := res.cookie(s.p.Session.CookieName)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.False(t, cleared.Expires.IsZero(), "raw: %v", res.setCookies)
		assert.True(t, cleared.Expires.Before(time.Now()))
		assert.True(t, cleared.HttpOnly)
	}

	me := s.do(http.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	assert.Equal(t, http.StatusUnauthorized, me.status)
}

// Requirement: the deletion cookie leaves the server with an empty value and
// an expiry in the past, even though session cookies are encrypted.
func TestLogout_DeletionCookieHeader(t *testing.T) {
	// Arrange
	s := newTestServer(t, nil)
	s.registerAndVerify()
	cookie, _ := s.loginAlice("P@ssw0rd1")

	// Act
	res := s.do(http.MethodGet, "/api/auth/logout", nil, withCookie(cookie))

	// Assert
	require.Equal(t, http.StatusOK, res.status)
	var raw string
	for _, h := range res.setCookies {
		if strings.HasPrefix(h, s.p.Session.CookieName+"=") {
			raw = h
		}
	}
	require.NotEmpty(t, raw, "headers: %v", res.setCookies)
	assert.True(t, strings.HasPrefix(raw, s.p.Session.CookieName+"=;"), raw)
	assert.Contains(t, strings.ToLower(raw), "expires=")
	assert.Contains(t, strings.ToLower(raw), "path=/")

	parsed, err := http.ParseSetCookie(raw)
	require.NoError(t, err)
	assert.True(t, parsed.Expires.Before(time.Now()), raw)
}

// Requirement: /me and /profile are guarded.
func TestGuard(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		opts   []reqOpt
	}{
		{"me without credentials", http.MethodGet, "/api/auth/me", nil},
		{"me with garbage bearer", http.MethodGet, "/api/auth/me", []reqOpt{withBearer("garbage")}},
		{"me with forged cookie", http.MethodGet, "/api/auth/me", []reqOpt{withCookie(&http.Cookie{Name: s.p.Session.CookieName, Value: "forged"})}},
		{"profile without credentials", http.MethodPut, "/api/auth/profile", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := s.do(test.method, test.path, map[string]any{"name": "Mallory"}, test.opts...)

			assert.Equal(t, http.StatusUnauthorized, res.status)
			assert.Equal(t, "Unauthorized", res.body["message"])
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndVerify()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "bob", "email": "bob@x.com", "password": "P@ssw0rd1",
	}).status)
	cookie, _ := s.loginAlice("P@ssw0rd1")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
		wantUser   string
	}{
		{"no fields", map[string]any{}, http.StatusBadRequest, "No fields to update", ""},
		{"username taken", map[string]any{"username": "bob"}, http.StatusBadRequest, "Username already taken", ""},
		{"name too short", map[string]any{"name": "A"}, http.StatusBadRequest, "Validation error: name must be at least 2 characters", ""},
		{"rename", map[string]any{"username": "alicia", "name": "Alicia"}, http.StatusOK, "", "alicia"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := s.do(http.MethodPut, "/api/auth/profile", test.body, withCookie(cookie))

			assert.Equal(t, test.wantStatus, res.status)
			if test.wantMsg != "" {
				assert.Equal(t, test.wantMsg, res.body["message"])
			}
			if test.wantUser != "" {
				assert.Equal(t, test.wantUser, res.body["username"])
				assert.Equal(t, "Alicia", res.body["name"])
				assert.NotContains(t, res.body, "password")
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndVerify()
	_, bearer := s.loginAlice("P@ssw0rd1")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantValid  bool
		wantMsg    string
	}{
		{"no body", nil, http.StatusBadRequest, false, msgNoToken},
		{"empty token", map[string]any{"token": ""}, http.StatusBadRequest, false, msgNoToken},
		{"garbage token", map[string]any{"token": "a.b.c"}, http.StatusOK, false, msgBadBearer},
		{"valid token", map[string]any{"token": bearer}, http.StatusOK, true, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := s.do(http.MethodPost, "/api/auth/validate-token", test.body)

			assert.Equal(t, test.wantStatus, res.status)
			assert.Equal(t, test.wantValid, res.body["valid"])
			if test.wantMsg == "" {
				assert.NotContains(t, res.body, "message")
			} else {
				assert.Equal(t, test.wantMsg, res.body["message"])
			}
		})
	}
}

func TestSecureCookiesInProduction(t *testing.T) {
	s := newTestServer(t, func(c *pinto.Config) { c.Production = true })
	s.registerAndVerify()

	cookie, _ := s.loginAlice("P@ssw0rd1")

	assert.True(t, cookie.Secure)
}

func TestSessionCookieIsEncrypted(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndVerify()
	cookie, _ := s.loginAlice("P@ssw0rd1")

	// the raw session token would resolve; the cookie value must not
	_, err := s.p.Sessions.Resolve(t.Context(), cookie.Value)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

// failingStore makes every email lookup fail with an internal error.
type failingStore struct {
	*memory.CredentialStore
}

func (failingStore) GetByEmail(string) (*core.User, error) {
	return nil, errors.New("connection refused to 10.0.0.5")
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	s := newTestServer(t, func(c *pinto.Config) {
		c.Credentials = failingStore{memory.NewCredentialStore()}
	})

	res := s.do(http.MethodPost, "/api/auth/forgot-password", map[string]any{"email": "alice@x.com"})

	assert.Equal(t, http.StatusInternalServerError, res.status)
	assert.Equal(t, msgInternal, res.body["message"])
}

type unknownEndpoints struct{}

func (unknownEndpoints) Endpoints() []*core.Endpoint {
	return []*core.Endpoint{{Path: "/sessions", Method: http.MethodGet, Metadata: core.EndpointMetadata{OperationID: "listSessions"}}}
}

func TestRegisterRoutes_UnknownOperation(t *testing.T) {
	a := New(fiber.New())

	err := a.RegisterRoutes(&pinto.Pinto{
		BasePath:  pinto.DefaultBasePath,
		Endpoints: unknownEndpoints{},
		Session:   pinto.DefaultSessionConfig(),
	})

	assert.ErrorContains(t, err, "listSessions")
}

func TestRegisterRoutes_MountsEveryRegistryEndpoint(t *testing.T) {
	s := newTestServer(t, func(c *pinto.Config) { c.BasePath = "/auth" })

	for _, ep := range services.BaseEndpoints() {
		res := s.do(ep.Method, "/auth"+ep.Path, map[string]any{})
		assert.NotEqual(t, http.StatusNotFound, res.status, fmt.Sprintf("%s %s", ep.Method, ep.Path))
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{core.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
		{core.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
		{core.NewValidationError("email", "bad"), http.StatusBadRequest, "bad"},
		{core.ErrNoFieldsUpdate, http.StatusBadRequest, "No fields to update"},
		{core.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
		{core.ErrEmailNotVerified, http.StatusUnauthorized, "Email not verified. Please check your inbox."},
		{core.ErrInvalidToken, http.StatusBadRequest, "Invalid or expired verification token"},
		{fmt.Errorf("wrapped: %w", core.ErrInvalidOrExpiredToken), http.StatusBadRequest, "Invalid or expired reset token"},
		{core.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{core.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{errors.New("boom"), http.StatusInternalServerError, msgInternal},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.err), func(t *testing.T) {
			status, msg := mapError(test.err)
			assert.Equal(t, test.wantStatus, status)
			assert.Equal(t, test.wantMsg, msg)
		})
	}
}
