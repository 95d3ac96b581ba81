package store

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
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.LinkedAccount{}))

	return NewGormStore(db)
}

func TestCreateAndFindClient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := &models.Client{Email: "alice@example.com", Name: "Alice", Plan: "free"}
	require.NoError(t, s.CreateClient(ctx, client))
	require.NotEmpty(t, client.ID)
	require.False(t, client.CreatedAt.IsZero())

	found, err := s.GetClientByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, client.ID, found.ID)

	byID, err := s.GetClientByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "Alice", byID.Name)
}

func TestGetClientByEmailMissing(t *testing.T) {
	s := newTestStore(t)

	found, err := s.GetClientByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestDuplicateEmailIsDuplicateKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateClient(ctx, &models.Client{Email: "dup@example.com", Name: "First", Plan: "free"}))

	err := s.CreateClient(ctx, &models.Client{Email: "dup@example.com", Name: "Second", Plan: "free"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestDuplicateProviderPairIsDuplicateKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := &models.Client{Email: "bob@example.com", Name: "Bob", Plan: "free"}
	require.NoError(t, s.CreateClient(ctx, client))

	account := &models.LinkedAccount{ClientID: client.ID, Provider: models.ProviderGithub, ProviderAccountID: "42"}
	require.NoError(t, s.CreateLinkedAccount(ctx, account))

	err := s.CreateLinkedAccount(ctx, &models.LinkedAccount{
		ClientID: client.ID, Provider: models.ProviderGithub, ProviderAccountID: "42",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateKey))

	// Same account id under another provider is fine.
	require.NoError(t, s.CreateLinkedAccount(ctx, &models.LinkedAccount{
		ClientID: client.ID, Provider: models.ProviderGoogle, ProviderAccountID: "42",
	}))
}

func TestUpdatePassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := &models.Client{Email: "carol@example.com", Name: "Carol", Plan: "free"}
	require.NoError(t, s.CreateClient(ctx, client))
	require.False(t, client.HasPassword())

	updated, err := s.UpdatePassword(ctx, client.ID, "$2a$10$hash")
	require.NoError(t, err)
	require.True(t, updated.HasPassword())
	require.Equal(t, client.ID, updated.ID)
}

func TestUpdatePasswordMissingClient(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdatePassword(context.Background(), "no-such-id", "$2a$10$hash")
	require.Error(t, err)
}

func TestTransactionRollsBackBothWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(tx ClientStore) error {
		client := &models.Client{Email: "dave@example.com", Name: "Dave", Plan: "free"}
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}
		if err := tx.CreateLinkedAccount(ctx, &models.LinkedAccount{
			ClientID: client.ID, Provider: models.ProviderGoogle, ProviderAccountID: "g-1",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither record survived the rollback.
	client, err := s.GetClientByEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	require.Nil(t, client)

	account, err := s.GetLinkedAccount(ctx, models.ProviderGoogle, "g-1")
	require.NoError(t, err)
	require.Nil(t, account)
}

func TestTransactionCommitsPair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunTransaction(ctx, func(tx ClientStore) error {
		client := &models.Client{Email: "erin@example.com", Name: "Erin", Plan: "free"}
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}
		return tx.CreateLinkedAccount(ctx, &models.LinkedAccount{
			ClientID: client.ID, Provider: models.ProviderGithub, ProviderAccountID: "gh-9",
		})
	})
	require.NoError(t, err)

	client, err := s.GetClientByEmail(ctx, "erin@example.com")
	require.NoError(t, err)
	require.NotNil(t, client)

	account, err := s.GetLinkedAccount(ctx, models.ProviderGithub, "gh-9")
	require.NoError(t, err)
	require.NotNil(t, account)
	require.Equal(t, client.ID, account.ClientID)
}
