package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of account kinds the dashboard knows how to render.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

// ErrInvalidRole is returned for any role outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole matches exactly; "Admin" or " admin" are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// ParseRoleFlag is the lenient variant used for CLI flags.
func ParseRoleFlag(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	return ParseRole(strings.ToLower(s))
}
