package models

import "time"

// User represents an account entity used for authentication and authorization.
// Group membership drives every repository permission decision.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Login is the unique user login identifier.
	Login string `json:"login"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// It is never exposed via JSON.
	PasswordHash string `json:"-"`

	// IsSuperuser grants access to every repository except the personal vault one.
	IsSuperuser bool `json:"is_superuser"`

	// Groups holds identifiers of the groups the user belongs to.
	Groups []int64 `json:"groups"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// InGroup reports whether the user is a member of any of the given groups.
func (u User) InGroup(groups []int64) bool {
	for _, g := range groups {
		for _, own := range u.Groups {
			if g == own {
				return true
			}
		}
	}
	return false
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
