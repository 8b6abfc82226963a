// Package oauthsession implements the OAuth Session: one
// loopback HTTP redirect catcher per in-progress interactive authorization,
// with PKCE, Dynamic Client Registration metadata, and a best-effort
// browser launch. One session value exists per server rather than a single
// global, since multiple servers can be mid-authorization at once.
package oauthsession

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// GenerateCodeVerifier returns a cryptographically random PKCE code
// verifier (RFC 7636): 96 random bytes base64url-encode to exactly 128
// characters, within the required 43-128 range.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, 96)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating PKCE code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ChallengeS256 derives the S256 PKCE code challenge from a verifier.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns a cryptographically-random OAuth state parameter.
func GenerateState() string {
	return uuid.NewString()
}
