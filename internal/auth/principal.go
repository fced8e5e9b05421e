package auth

import "zxyspace/internal/models"

// Principal is the authenticated identity attached to a request. Handlers
// receive it explicitly and pass it down to services; there is no global
// security context.
type Principal struct {
	UserID   uint
	Username string
	Role     models.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}
