package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lborres/pinto/core"
)

const DefaultBearerTTL = 24 * time.Hour

// Claims carries the user id both as the standard subject and as "id".
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Issuer signs HS256 bearer tokens with a process-wide secret. There is no
// revocation list: rotating the secret invalidates every outstanding token.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ core.BearerIssuer = (*Issuer)(nil)

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultBearerTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source used for issuing and verifying.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Issue(userID int64) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry only and returns the subject user id.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, core.ErrInvalidBearerToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, errors.Join(core.ErrInvalidBearerToken, err)
	}
	if !token.Valid {
		return 0, core.ErrInvalidBearerToken
	}

	if claims.Subject != "" {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil || id != claims.UserID {
			return 0, core.ErrInvalidBearerToken
		}
	}
	return claims.UserID, nil
}
