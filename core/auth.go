package core

// RegisterInput contains the data needed to register a new user
type RegisterInput struct {
	Username string  `json:"username" validate:"required,min=3,max=32"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,password"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

// RegisterResult contains the new user and the token to deliver out-of-band
type RegisterResult struct {
	User              *User  `json:"user"`
	VerificationToken string `json:"-"`
}

// LoginInput contains the credentials for authentication
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResult contains the authenticated user, their session, and a bearer token
type LoginResult struct {
	User         *User    `json:"user"`
	Session      *Session `json:"-"`
	SessionToken string   `json:"-"` // raw token, only ever sent as a cookie
	Token        string   `json:"token"`
}

// EmailInput is the body of forgot-password and resend-verification.
type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput completes a password reset
type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

// ProfileInput is a partial profile update; absent fields are left untouched.
type ProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3,max=32"`
}

// ValidateTokenInput is the body of validate-token
type ValidateTokenInput struct {
	Token string `json:"token"`
}

// Credentials are the identity proofs presented with a request.
type Credentials struct {
	SessionToken string
	BearerToken  string
}
