// Package domain holds the marketplace's entities.
package domain

import "time"

// Role decides what a user may do.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBusiness   Role = "business"
	RoleInfluencer Role = "influencer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBusiness, RoleInfluencer:
		return true
	}
	return false
}

// User is an account: a business buying campaigns, an influencer selling
// them, or an admin.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// IsAdmin returns true for administrators.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsBusiness returns true for business accounts.
func (u *User) IsBusiness() bool { return u.Role == RoleBusiness }

// IsInfluencer returns true for influencer accounts.
func (u *User) IsInfluencer() bool { return u.Role == RoleInfluencer }

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
