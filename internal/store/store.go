// Package store provides persistence for clients and their linked provider
// accounts. The interface is the transactional contract the reconciliation
// engine depends on; the gorm implementation backs it with Postgres in
// production and sqlite in tests.
package store

import (
	"context"
	"errors"

	"github.com/authgate/authgate/internal/models"
)

// ErrDuplicateKey is returned when a write violates a unique constraint
// (clients.email or the (provider, provider_account_id) pair). The database
// constraint, not the caller, is the arbiter of registration races.
var ErrDuplicateKey = errors.New("duplicate key")

// ClientStore exposes atomic create/find/update of client and linked-account
// records plus a transaction primitive. Lookup methods return (nil, nil) when
// no record matches.
type ClientStore interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClientByEmail(ctx context.Context, email string) (*models.Client, error)
	GetClientByID(ctx context.Context, id string) (*models.Client, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*models.Client, error)

	CreateLinkedAccount(ctx context.Context, account *models.LinkedAccount) error
	GetLinkedAccount(ctx context.Context, provider, providerAccountID string) (*models.LinkedAccount, error)

	// RunTransaction executes fn against a store bound to a single database
	// transaction. fn returning an error rolls every write back; concurrent
	// requests observe either all of the transaction's writes or none.
	RunTransaction(ctx context.Context, fn func(tx ClientStore) error) error
}
