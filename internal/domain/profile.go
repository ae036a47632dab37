package domain

import "time"

// Role enumerates portal roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Profile is the portal's view of an authenticated identity.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the profile carries the ADMIN role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
