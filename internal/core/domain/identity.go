package domain

import "time"

// Identity is the authenticated caller of a single request. Only the
// authentication middleware creates it; it is never persisted.
type Identity struct {
	UserID    string
	Email     string
	Username  string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the identity holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
