package models

import "time"

// Auth providers a linked account may belong to.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// LinkedAccount stores an external provider identity attached to a client.
// The (provider, provider_account_id) pair is globally unique; the database
// constraint is the sole arbiter of linking races.
type LinkedAccount struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	ClientID          string    `json:"client_id" gorm:"index;not null"`
	Provider          string    `json:"provider" gorm:"index:idx_provider_account,unique;not null"`
	ProviderAccountID string    `json:"provider_account_id" gorm:"index:idx_provider_account,unique;not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for LinkedAccount
func (LinkedAccount) TableName() string {
	return "linked_accounts"
}
