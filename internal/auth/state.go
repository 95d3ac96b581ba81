package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateTokenManager issues and verifies the short-lived signed state values
// embedded in OAuth redirects. State tokens are signed with their own secret
// so a leaked session key cannot be used to forge redirect state, and vice
// versa. Verification is stateless: only the signature and expiry are
// checked, no server-side record of issued tokens is kept.
type StateTokenManager struct {
	secret []byte
	ttl    time.Duration
}

type stateClaims struct {
	State string `json:"state"`
	jwt.RegisteredClaims
}

// NewStateTokenManager creates a manager signing with secret; ttl bounds how
// long a redirect round-trip may take (typically 5 minutes).
func NewStateTokenManager(secret string, ttl time.Duration) *StateTokenManager {
	return &StateTokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue generates a random 256-bit state value and wraps it in a signed,
// time-boxed token suitable for use as an OAuth state parameter.
func (m *StateTokenManager) Issue() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", Errorf(ErrInternal, "failed to generate state")
	}

	now := time.Now()
	claims := stateClaims{
		State: hex.EncodeToString(nonce),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Errorf(ErrInternal, "failed to sign state")
	}
	return token, nil
}

// Verify checks the signature and expiry of a state token and returns the
// embedded CSRF nonce. Every failure mode (missing, malformed, bad signature,
// expired) collapses to the same Unauthorized message so a caller cannot
// probe which check rejected the token.
func (m *StateTokenManager) Verify(token string) (string, error) {
	if token == "" {
		return "", Errorf(ErrUnauthorized, "invalid or expired state")
	}

	var claims stateClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.State == "" {
		return "", Errorf(ErrUnauthorized, "invalid or expired state")
	}

	return claims.State, nil
}
