package auth

import (
	"context"

	"github.com/authgate/authgate/internal/models"
	"github.com/authgate/authgate/internal/store"
)

// CredentialVerifier handles the local login path: find the client, make sure
// it can log in locally, compare the password hash.
type CredentialVerifier struct {
	store store.ClientStore
}

// NewCredentialVerifier creates a verifier over the given store.
func NewCredentialVerifier(s store.ClientStore) *CredentialVerifier {
	return &CredentialVerifier{store: s}
}

// Login authenticates a client by email and password.
func (v *CredentialVerifier) Login(ctx context.Context, email, password string) (*models.Client, error) {
	client, err := v.store.GetClientByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, Errorf(ErrNotFound, "client not found")
	}

	if !client.HasPassword() {
		return nil, Errorf(ErrUnauthorized, "password not set")
	}

	if !VerifyPassword(password, *client.PasswordHash) {
		return nil, Errorf(ErrUnauthorized, "invalid password")
	}

	return client, nil
}
