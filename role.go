package authcore

import "fmt"

// Role is the closed set of authorization roles. Authorization is a
// pure membership check (Allowed), independent of the token lifecycle.
type Role uint8

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = iota
	// RoleAdmin grants access to routes gated with RequireRoles(RoleAdmin).
	RoleAdmin
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole maps a wire representation back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUser, fmt.Errorf("invalid role %q", s)
	}
}

// Allowed reports whether role satisfies the requirement. An empty
// requirement allows any authenticated identity; otherwise membership
// is strict, so RoleAdmin does not implicitly satisfy RoleUser.
func Allowed(role Role, required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}
