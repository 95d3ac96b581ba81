package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/authgate/authgate/internal/models"
)

// GormStore implements ClientStore on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db in a ClientStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateClient inserts a client, assigning a UUID and timestamps when unset.
func (s *GormStore) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
		client.UpdatedAt = now
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetClientByEmail finds a client by email, returning (nil, nil) when absent.
func (s *GormStore) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &client, nil
}

// GetClientByID finds a client by primary key, returning (nil, nil) when absent.
func (s *GormStore) GetClientByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &client, nil
}

// UpdatePassword sets the password hash of an existing client in place and
// returns the updated record.
func (s *GormStore) UpdatePassword(ctx context.Context, id, passwordHash string) (*models.Client, error) {
	updates := map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update password: client %s not found", id)
	}
	return s.GetClientByID(ctx, id)
}

// CreateLinkedAccount inserts a provider identity row for a client.
func (s *GormStore) CreateLinkedAccount(ctx context.Context, account *models.LinkedAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
		account.UpdatedAt = now
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetLinkedAccount finds a linked account by its provider identity pair,
// returning (nil, nil) when absent.
func (s *GormStore) GetLinkedAccount(ctx context.Context, provider, providerAccountID string) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := s.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

// RunTransaction runs fn against a store bound to one database transaction.
func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx ClientStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translateError maps gorm's translated driver errors onto the store's
// sentinels. Requires gorm.Config.TranslateError.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
