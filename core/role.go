package core

import (
	"fmt"
	"strings"
)

// Role is a position in the authorization hierarchy.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleNone:   "none",
	RoleViewer: "viewer",
	RoleEditor: "editor",
	RoleAdmin:  "admin",
}

// ParseRole maps a stored role name to a Role. Unknown names map to RoleNone.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "editor":
		return RoleEditor
	case "viewer":
		return RoleViewer
	default:
		return RoleNone
	}
}

// ParseAssignableRole is ParseRole for user input: only roles that can be
// granted to a wallet are accepted.
func ParseAssignableRole(name string) (Role, error) {
	role := ParseRole(name)
	if role == RoleNone {
		return RoleNone, fmt.Errorf("invalid role %q", name)
	}
	return role, nil
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[RoleNone]
}

// Level is the rank of the role in the total order none < viewer < editor < admin.
func (r Role) Level() int {
	if r < RoleNone || r > RoleAdmin {
		return int(RoleNone)
	}
	return int(r)
}

// Satisfies reports whether r grants at least the privileges of required.
func (r Role) Satisfies(required Role) bool {
	return r.Level() >= required.Level()
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// RequireRole rejects identities whose role ranks below required.
func RequireRole(actual, required Role) error {
	if !actual.Satisfies(required) {
		return fmt.Errorf("%w: %s role required", ErrInsufficientPermissions, required)
	}
	return nil
}
