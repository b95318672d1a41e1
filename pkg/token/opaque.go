// Package token issues the opaque single-use tokens stored on user records
// and the signed bearer tokens handed to API clients.
package token

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/pkg/crypto"
)

// ResetTokenBytes is the entropy of a password-reset token before hex encoding.
const ResetTokenBytes = 32

// Opaque implements core.OpaqueTokens.
type Opaque struct{}

var _ core.OpaqueTokens = Opaque{}

// VerificationToken returns a random UUID v4.
func (Opaque) VerificationToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ResetToken returns 32 random bytes, hex encoded.
func (Opaque) ResetToken() (string, error) {
	b, err := crypto.RandomBytes(ResetTokenBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
