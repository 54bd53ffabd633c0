package types

import (
	"strings"
	"time"
)

// Role names are seeded by the initial migration and never change at
// runtime.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user (UUID string).
	ID string `json:"id" db:"id"`

	// Email is the user's email address, also used as the login name.
	// Unique across all accounts.
	Email string `json:"email" db:"email"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Roles lists the role names assigned to the user (e.g., "admin",
	// "user"). Every role is embedded as a claim in issued tokens.
	Roles []string `json:"roles" db:"roles"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name used in booking views.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// HasRole reports whether the user carries the named role.
// Role comparison is case-insensitive throughout the system.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
