// Package jwtx verifies the bearer tokens that carry the authenticated
// user id into the account API. Token issuance lives with the sign-in
// service; this side only needs a shared-secret verifier.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims the account API cares about. The
// subject is the user id; sid mirrors the browser session but the API
// reads the session from the _session cookie, not from the token.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session id the token was minted under, if any.
	SID string `json:"sid,omitempty"`
}

// NewClaims builds minimally-correct claims for a user token.
func NewClaims(subject, sid, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID: sid,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
