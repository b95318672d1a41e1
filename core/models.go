package core

import "time"

// User represents an account in the credential store.
//
// Token fields never leave the process: they are delivered out-of-band
// (mail, or the register/forgot-password responses in demo mode).
type User struct {
	ID                   int64      `json:"id"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	Password             string     `json:"-"` // one-way hash, never the plaintext
	Name                 *string    `json:"name"`
	EmailVerified        bool       `json:"emailVerified"`
	VerificationToken    *string    `json:"-"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	GoogleID             *string    `json:"googleId"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Clone returns a deep copy so callers never alias store-owned records.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Name = cloneString(u.Name)
	c.VerificationToken = cloneString(u.VerificationToken)
	c.ResetPasswordToken = cloneString(u.ResetPasswordToken)
	c.GoogleID = cloneString(u.GoogleID)
	if u.ResetPasswordExpires != nil {
		t := *u.ResetPasswordExpires
		c.ResetPasswordExpires = &t
	}
	return &c
}

// NewUser holds the fields supplied when creating a user.
type NewUser struct {
	Username string
	Email    string
	Password string // already hashed
	Name     *string
	GoogleID *string
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Name     *string
	GoogleID *string
}

// Empty reports whether the update carries no fields.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Name == nil && u.GoogleID == nil
}

// Session represents an active login session
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionData combines user and session info
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
