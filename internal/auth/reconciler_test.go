package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/authgate/authgate/internal/models"
	"github.com/authgate/authgate/internal/store"
)

func newTestStore(t *testing.T) store.ClientStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.LinkedAccount{}))

	return store.NewGormStore(db)
}

func localRequest(email string) RegistrationRequest {
	hash := "$2a$10$local-hash"
	return RegistrationRequest{
		Email:        email,
		Name:         "Alice",
		PasswordHash: &hash,
		Provider:     models.ProviderLocal,
		Plan:         "free",
	}
}

func oauthRequest(provider, email, accountID string) RegistrationRequest {
	return RegistrationRequest{
		Email:             email,
		Name:              "Alice",
		Provider:          provider,
		ProviderAccountID: accountID,
	}
}

func TestReconcileLocalNewClient(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	outcome, err := r.Reconcile(ctx, localRequest("alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, OutcomeNewClient, outcome.Kind)
	require.True(t, outcome.IsNewClient())
	require.True(t, outcome.Client.HasPassword())

	// The local linked account is keyed by the client's own ID.
	account, err := s.GetLinkedAccount(ctx, models.ProviderLocal, outcome.Client.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, outcome.Client.ID, account.ClientID)
}

func TestReconcileLocalConflict(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	_, err := r.Reconcile(ctx, localRequest("alice@example.com"))
	require.NoError(t, err)

	_, err = r.Reconcile(ctx, localRequest("alice@example.com"))
	require.True(t, errors.Is(err, ErrConflict))
}

func TestReconcileLocalClaimsOAuthOnlyClient(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	// First an OAuth registration: client with no password.
	first, err := r.Reconcile(ctx, oauthRequest(models.ProviderGoogle, "alice@example.com", "g-123"))
	require.NoError(t, err)
	require.Equal(t, OutcomeNewClient, first.Kind)
	require.False(t, first.Client.HasPassword())

	// A local registration for the same email claims the account in place.
	claimed, err := r.Reconcile(ctx, localRequest("alice@example.com"))
	require.NoError(t, err)
	require.Equal(t, OutcomePasswordClaimed, claimed.Kind)
	require.False(t, claimed.IsNewClient())
	require.Equal(t, first.Client.ID, claimed.Client.ID)
	require.True(t, claimed.Client.HasPassword())

	// No second client record was created.
	byEmail, err := s.GetClientByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, first.Client.ID, byEmail.ID)
}

func TestReconcileOAuthNewClient(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	outcome, err := r.Reconcile(ctx, oauthRequest(models.ProviderGithub, "bob@example.com", "gh-7"))
	require.NoError(t, err)
	require.Equal(t, OutcomeNewClient, outcome.Kind)
	require.False(t, outcome.Client.HasPassword())

	account, err := s.GetLinkedAccount(ctx, models.ProviderGithub, "gh-7")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, outcome.Client.ID, account.ClientID)
}

func TestReconcileOAuthLinksExistingEmail(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	local, err := r.Reconcile(ctx, localRequest("alice@example.com"))
	require.NoError(t, err)

	linked, err := r.Reconcile(ctx, oauthRequest(models.ProviderGithub, "alice@example.com", "gh-55"))
	require.NoError(t, err)
	require.Equal(t, OutcomeAccountLinked, linked.Kind)
	require.False(t, linked.IsNewClient())
	require.Equal(t, local.Client.ID, linked.Client.ID)

	account, err := s.GetLinkedAccount(ctx, models.ProviderGithub, "gh-55")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, local.Client.ID, account.ClientID)
}

func TestReconcileOAuthExistingLinkIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, oauthRequest(models.ProviderGoogle, "alice@example.com", "g-1"))
	require.NoError(t, err)

	account, err := s.GetLinkedAccount(ctx, models.ProviderGoogle, "g-1")
	require.NoError(t, err)
	createdAt := account.CreatedAt

	again, err := r.Reconcile(ctx, oauthRequest(models.ProviderGoogle, "alice@example.com", "g-1"))
	require.NoError(t, err)
	require.Equal(t, OutcomeExistingAccountLogin, again.Kind)
	require.Equal(t, first.Client.ID, again.Client.ID)

	// No write happened.
	account, err = s.GetLinkedAccount(ctx, models.ProviderGoogle, "g-1")
	require.NoError(t, err)
	require.Equal(t, createdAt, account.CreatedAt)
}

func TestReconcileUnsupportedProvider(t *testing.T) {
	r := NewIdentityReconciler(newTestStore(t))

	_, err := r.Reconcile(context.Background(), RegistrationRequest{
		Email:    "alice@example.com",
		Provider: "facebook",
	})
	require.True(t, errors.Is(err, ErrInternal))
}

func TestReconcileLocalClaimRequiresPassword(t *testing.T) {
	s := newTestStore(t)
	r := NewIdentityReconciler(s)
	ctx := context.Background()

	_, err := r.Reconcile(ctx, oauthRequest(models.ProviderGoogle, "alice@example.com", "g-9"))
	require.NoError(t, err)

	req := localRequest("alice@example.com")
	req.PasswordHash = nil
	_, err = r.Reconcile(ctx, req)
	require.True(t, errors.Is(err, ErrBadRequest))
}
