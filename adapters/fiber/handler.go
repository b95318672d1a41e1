package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/pinto"
)

const (
	msgRegistered     = "User registered successfully. Please check your email for verification."
	msgLoggedIn       = "Login successful"
	msgVerified       = "Email verified successfully. You can now log in."
	msgResent         = "If the account exists and is not yet verified, a new verification link has been sent."
	msgResetRequested = "If the email exists, a password reset link has been sent."
	msgResetDone      = "Password reset successful. You can now log in with your new password."
	msgLoggedOut      = "Logged out successfully"
	msgLogoutFailed   = "Error logging out"
	msgBadBody        = "Invalid request body"
	msgNoToken        = "No token provided"
	msgBadBearer      = "Invalid or expired token"
	msgInternal       = "Internal server error"
)

type registerResponse struct {
	Message           string      `json:"message"`
	User              *pinto.User `json:"user"`
	VerificationToken string      `json:"verificationToken,omitempty"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    *pinto.User `json:"user"`
	Token   string      `json:"token"`
}

type tokenResponse struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"`
	ResetToken        string `json:"resetToken,omitempty"`
}

type validateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func (a *Adapter) register(c fiber.Ctx) error {
	var input pinto.RegisterInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	result, err := a.p.Auth.Register(c.Context(), input)
	if err != nil {
		return a.handleAuthError(c, err)
	}

	resp := registerResponse{Message: msgRegistered, User: result.User}
	if a.p.ExposeTokens {
		resp.VerificationToken = result.VerificationToken
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input pinto.LoginInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	result, err := a.p.Auth.Login(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return a.handleAuthError(c, err)
	}

	a.setSessionCookie(c, result.SessionToken)
	return c.Status(http.StatusOK).JSON(loginResponse{
		Message: msgLoggedIn,
		User:    result.User,
		Token:   result.Token,
	})
}

func (a *Adapter) verifyEmail(c fiber.Ctx) error {
	if _, err := a.p.Auth.VerifyEmail(c.Context(), c.Query("token")); err != nil {
		return a.handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(pinto.MessageResponse{Message: msgVerified})
}

func (a *Adapter) resendVerification(c fiber.Ctx) error {
	var input pinto.EmailInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	token, err := a.p.Auth.ResendVerification(c.Context(), input.Email)
	if err != nil {
		return a.handleAuthError(c, err)
	}

	resp := tokenResponse{Message: msgResent}
	if a.p.ExposeTokens {
		resp.VerificationToken = token
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// forgotPassword answers with the same message whether or not the email
// exists. The token is only included in demo mode.
func (a *Adapter) forgotPassword(c fiber.Ctx) error {
	var input pinto.EmailInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	token, err := a.p.Auth.RequestPasswordReset(c.Context(), input.Email)
	if err != nil {
		return a.handleAuthError(c, err)
	}

	resp := tokenResponse{Message: msgResetRequested}
	if a.p.ExposeTokens {
		resp.ResetToken = token
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func (a *Adapter) resetPassword(c fiber.Ctx) error {
	var input pinto.ResetPasswordInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	if err := a.p.Auth.CompletePasswordReset(c.Context(), input); err != nil {
		return a.handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(pinto.MessageResponse{Message: msgResetDone})
}

// logout always clears the cookie; a missing or unknown session still gets 200.
func (a *Adapter) logout(c fiber.Ctx) error {
	token := c.Cookies(a.p.Session.CookieName)

	if err := a.p.Auth.Logout(c.Context(), token); err != nil {
		a.p.Logger.Error(c.Context(), "logout failed", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(pinto.MessageResponse{Message: msgLogoutFailed})
	}

	a.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(pinto.MessageResponse{Message: msgLoggedOut})
}

func (a *Adapter) me(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return a.handleAuthError(c, pinto.ErrUnauthenticated)
	}
	return c.Status(http.StatusOK).JSON(user)
}

func (a *Adapter) updateProfile(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return a.handleAuthError(c, pinto.ErrUnauthenticated)
	}

	var input pinto.ProfileInput
	if err := a.bind(c, &input); err != nil {
		return a.handleAuthError(c, err)
	}

	updated, err := a.p.Auth.UpdateProfile(c.Context(), user.ID, input)
	if err != nil {
		return a.handleAuthError(c, err)
	}
	return c.Status(http.StatusOK).JSON(updated)
}

func (a *Adapter) validateToken(c fiber.Ctx) error {
	var input pinto.ValidateTokenInput
	if len(c.Body()) > 0 {
		// a malformed body reads as a missing token
		_ = c.Bind().JSON(&input)
	}

	if input.Token == "" {
		return c.Status(http.StatusBadRequest).JSON(validateTokenResponse{Valid: false, Message: msgNoToken})
	}
	if !a.p.Auth.ValidateToken(c.Context(), input.Token) {
		return c.Status(http.StatusOK).JSON(validateTokenResponse{Valid: false, Message: msgBadBearer})
	}
	return c.Status(http.StatusOK).JSON(validateTokenResponse{Valid: true})
}

// bind decodes the JSON body into out and checks it against its validate tags.
func (a *Adapter) bind(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return &pinto.ValidationError{Message: msgBadBody}
	}
	return a.validator.Validate(out)
}

func (a *Adapter) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     a.p.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.p.Session.MaxAge / time.Second),
		Expires:  time.Now().Add(a.p.Session.MaxAge),
		Secure:   a.p.SecureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearSessionCookie marks the response; expireSessionCookie writes the
// deletion cookie once the encryption layer is done.
func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.Locals(localClearedCookie, true)
}

// errorMapping pairs a sentinel with its status and client-facing message.
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{pinto.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
	{pinto.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{pinto.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
	{pinto.ErrEmailNotVerified, http.StatusUnauthorized, "Email not verified. Please check your inbox."},
	{pinto.ErrInvalidToken, http.StatusBadRequest, "Invalid or expired verification token"},
	{pinto.ErrInvalidOrExpiredToken, http.StatusBadRequest, "Invalid or expired reset token"},
	{pinto.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{pinto.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
}

// handleAuthError writes the JSON error response for err. Unknown errors
// become a generic 500 and are logged.
func (a *Adapter) handleAuthError(c fiber.Ctx, err error) error {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		a.p.Logger.Error(c.Context(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(pinto.MessageResponse{Message: message})
}

func mapError(err error) (int, string) {
	var verr *pinto.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}

