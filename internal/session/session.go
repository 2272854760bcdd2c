// Package session implements the guard that runs before any protected
// screen: it checks the stored credential against the API, resolves the
// user's role and decides whether the screen may render.
package session

import "academic-dashboard/internal/domain"

type Status int

const (
	Verifying Status = iota
	Authenticated
	Unauthenticated
	Forbidden
)

func (s Status) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Terminal reports whether no further automatic transition happens.
func (s Status) Terminal() bool { return s != Verifying }

const (
	MsgNotAuthenticated = "not authenticated"
	MsgAccessDenied     = "access denied"
	MsgInvalidToken     = "invalid token"
)

// Session is a read-only snapshot handed to consumers.
type Session struct {
	Status   Status
	Identity *domain.UserProfile
	Message  string
}

// Profile returns a copy of the identity, ok=false unless authenticated.
func (s Session) Profile() (domain.UserProfile, bool) {
	if s.Status != Authenticated || s.Identity == nil {
		return domain.UserProfile{}, false
	}
	return *s.Identity, true
}
