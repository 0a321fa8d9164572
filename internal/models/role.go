package models

// Role is the flag stored on a student row.
type Role string

// RoleAdmin unlocks the dashboard. Any other value, including empty, is an ordinary user.
const RoleAdmin Role = "admin"

// IsAdmin reports whether the role grants admin access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
