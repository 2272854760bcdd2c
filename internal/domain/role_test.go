package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"student", RoleStudent, false},
		{"professor", RoleProfessor, false},
		{"Admin", "", true},
		{"teacher", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseRole(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q) error = %v, want ErrInvalidRole", tc.input, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}

func TestParseRoleFlag(t *testing.T) {
	if r, err := ParseRoleFlag(""); err != nil || r != "" {
		t.Errorf("empty flag should mean no role, got %q %v", r, err)
	}
	if r, err := ParseRoleFlag(" Professor "); err != nil || r != RoleProfessor {
		t.Errorf("expected professor, got %q %v", r, err)
	}
	if _, err := ParseRoleFlag("dean"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := PlaceholderEmail(RoleStudent); got != "student@domain" {
		t.Errorf("PlaceholderEmail = %q", got)
	}
	if got := PlaceholderName(RoleAdmin); got != "admin" {
		t.Errorf("PlaceholderName = %q", got)
	}
}
