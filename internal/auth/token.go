package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authgate/authgate/internal/models"
)

// TokenIssuer signs session JWTs with the primary secret. The session secret
// and TTL are independent from the state-token ones.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// SessionClaims is the payload carried by a session token.
type SessionClaims struct {
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// NewTokenIssuer creates an issuer with the given secret and session TTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the client.
func (t *TokenIssuer) Issue(client *models.Client) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:    client.Email,
		ClientID: client.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Errorf(ErrInternal, "token generation failed")
	}
	return token, nil
}

// Verify parses and validates a session token.
func (t *TokenIssuer) Verify(token string) (*SessionClaims, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, Errorf(ErrUnauthorized, "invalid token")
	}
	return &claims, nil
}

// ClientView is a client record with sensitive fields stripped, the only
// shape a client record leaves the service in.
type ClientView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize strips the password hash from a client record.
func Sanitize(client *models.Client) ClientView {
	return ClientView{
		ID:        client.ID,
		Email:     client.Email,
		Name:      client.Name,
		Plan:      client.Plan,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}
