package core

import "errors"

// User errors
var (
	ErrConflict      = errors.New("conflict")
	ErrEmailTaken    = conflict("email already in use")   // 400
	ErrUsernameTaken = conflict("username already taken") // 400
	ErrUserNotFound  = errors.New("user not found")       // 404
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")                 // 401
	ErrEmailNotVerified   = errors.New("email not verified, please check your inbox") // 401
	ErrUnauthenticated    = errors.New("unauthorized")                                // 401
)

// Token errors
var (
	ErrInvalidToken          = errors.New("invalid or expired verification token") // 400
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")        // 400
	ErrInvalidBearerToken    = errors.New("invalid or expired token")              // 401
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found") // 401
	ErrSessionExpired  = errors.New("session expired")   // 401
	ErrInvalidSession  = errors.New("session has no token hash")
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// Validation errors (client input), all 400. Messages reach clients verbatim.
var (
	ErrValidation      = errors.New("validation error")
	ErrNoFieldsUpdate  = &ValidationError{Message: "No fields to update"}
	ErrPasswordTooLong = &ValidationError{Field: "password", Message: "Password must be at most 72 bytes"}
)

// Config errors (server-side configuration)
var (
	ErrHTTPAdapterRequired   = errors.New("http adapter is required")                     // 500
	ErrSecretRequired        = errors.New("secret is required")                           // 500
	ErrSecretTooShort        = errors.New("secret too short")                             // 500
	ErrSessionSecretRequired = errors.New("session secret is required")                   // 500
	ErrInsecureSecret        = errors.New("secrets must be set explicitly in production") // 500
)

// ValidationError describes malformed client input. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// conflictError matches ErrConflict while keeping its own message.
type conflictError struct {
	msg string
}

func conflict(msg string) error {
	return &conflictError{msg: msg}
}

func (e *conflictError) Error() string {
	return e.msg
}

func (e *conflictError) Is(target error) bool {
	return target == ErrConflict
}
