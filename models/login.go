package models

import "github.com/google/uuid"

// UserLogin binds an external-provider credential to a user account.
// The (LoginProvider, ProviderKey) pair is globally unique: one external
// identity can be linked to at most one user.
type UserLogin struct {
	// LoginProvider identifies the external provider (e.g. "github").
	LoginProvider string `json:"login_provider"`

	// ProviderKey is the user's unique key at the provider.
	ProviderKey string `json:"provider_key"`

	// ProviderDisplayName is a human-readable provider label for UI.
	ProviderDisplayName string `json:"provider_display_name"`

	// UserID is the owning user. Zero when the login describes an external
	// credential not yet attached to an account.
	UserID uuid.UUID `json:"-"`
}

// TableName returns the name of the database table
// associated with the UserLogin model.
func (l UserLogin) TableName() string {
	return "user_logins"
}
