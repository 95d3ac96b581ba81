package models

import "time"

// Client represents an end user of the platform. A client is created exactly
// once per unique email, regardless of how many providers it authenticates with.
type Client struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	PasswordHash *string   `json:"-" gorm:"column:password_hash"` // nil means OAuth-only, never expose in JSON
	Plan         string    `json:"plan" gorm:"not null;default:free"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships (optional, for eager loading)
	LinkedAccounts []LinkedAccount `json:"-" gorm:"foreignKey:ClientID"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// HasPassword reports whether the client has set a local password.
// Clients without one authenticate only through linked provider accounts.
func (c *Client) HasPassword() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}
