package domain

import "time"

// Role is a fixed authorization role. Role membership drives authorization, never identity.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// DefaultRole is assigned to self-registered users.
const DefaultRole = RoleUser

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated identity attached to a single request.
// It is derived solely from a verified token and never persisted.
type Principal struct {
	Subject string `json:"subject"`
	Roles   []Role `json:"roles"`
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the principal's roles are a superset of required.
func (p *Principal) HasAllRoles(required ...Role) bool {
	for _, r := range required {
		if !p.HasRole(r) {
			return false
		}
	}
	return true
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// RoleStrings returns the roles as plain strings, preserving order.
func (p *Principal) RoleStrings() []string {
	out := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		out = append(out, string(r))
	}
	return out
}

// IssuedToken is a freshly signed bearer token together with its validity window.
type IssuedToken struct {
	Value     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     IssuedToken
	Principal Principal
	UserID    int64
	Email     string
}
