package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/domain"
	"academic-dashboard/internal/logx"
	"academic-dashboard/internal/tokenstore"
)

const component = "session"

// Verifier is the slice of the API client the guard needs.
type Verifier interface {
	VerifyIdentity(ctx context.Context) (apiclient.Identity, error)
}

type Options struct {
	// RedirectDelay before OnRedirect fires; <=0 means 2s.
	RedirectDelay time.Duration
	// LoginPath passed to OnRedirect; "" means "/login".
	LoginPath string
	// OnRedirect is called (from a timer goroutine) after a failed guard.
	OnRedirect func(target string)
}

// Guard owns exactly one Session. Mount runs the verification machine;
// calling it again (e.g. with another required role) restarts from
// Verifying and discards whatever the previous run would have produced.
type Guard struct {
	tokens   tokenstore.Store
	verifier Verifier
	validate *validator.Validate
	opts     Options

	mu      sync.Mutex
	session Session
	gen     uint64
	timers  []*time.Timer
	mounted bool
}

func NewGuard(tokens tokenstore.Store, verifier Verifier, opts Options) *Guard {
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = 2000 * time.Millisecond
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	return &Guard{
		tokens:   tokens,
		verifier: verifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		session:  Session{Status: Verifying},
	}
}

// Session returns the current snapshot.
func (g *Guard) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Mount runs the guard for requiredRole ("" = any role) and returns the
// terminal session. If a newer Mount, an Unmount or ctx cancellation
// happened meanwhile, the result is dropped and the current snapshot is
// returned instead.
func (g *Guard) Mount(ctx context.Context, requiredRole domain.Role) Session {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mounted = true
	g.stopTimersLocked()
	prev := g.session.Status
	g.session = Session{Status: Verifying}
	g.mu.Unlock()
	logx.LogTransition(component, prev.String(), Verifying.String(), "")

	next, clear := g.resolve(ctx, requiredRole)

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen || !g.mounted || ctx.Err() != nil {
		logx.LogTransition(component, "stale run", next.Status.String(), "ignored")
		return g.session
	}
	if clear {
		if err := g.tokens.Clear(ctx); err != nil {
			logx.LogError(component, "clear credential", err)
		}
	}
	g.session = next
	logx.LogTransition(component, Verifying.String(), next.Status.String(), next.Message)
	if next.Status != Authenticated {
		g.scheduleRedirectLocked(gen)
	}
	return next
}

// Unmount tears the guard down: pending redirects are stopped and any
// in-flight verification result is ignored.
func (g *Guard) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.mounted = false
	g.stopTimersLocked()
}

// Reject ends an authenticated session after a later request was refused
// (status Unauthenticated or Forbidden). The credential is cleared and the
// redirect scheduled as in Mount. Guards that are not mounted and
// authenticated are left alone.
func (g *Guard) Reject(ctx context.Context, status Status, message string) Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || g.session.Status != Authenticated || (status != Unauthenticated && status != Forbidden) {
		return g.session
	}
	if message == "" {
		message = MsgInvalidToken
		if status == Forbidden {
			message = MsgAccessDenied
		}
	}
	if err := g.tokens.Clear(ctx); err != nil {
		logx.LogError(component, "clear credential", err)
	}
	g.session = Session{Status: status, Message: message}
	logx.LogTransition(component, Authenticated.String(), status.String(), message)
	g.scheduleRedirectLocked(g.gen)
	return g.session
}

// resolve computes the terminal session without touching guard state.
// clear reports whether the credential must be dropped.
func (g *Guard) resolve(ctx context.Context, requiredRole domain.Role) (Session, bool) {
	_, ok, err := g.tokens.Get(ctx)
	if err != nil {
		logx.LogError(component, "read credential", err)
		return Session{Status: Unauthenticated, Message: MsgNotAuthenticated}, true
	}
	if !ok {
		return Session{Status: Unauthenticated, Message: MsgNotAuthenticated}, true
	}

	ident, err := g.verifier.VerifyIdentity(ctx)
	if err != nil {
		msg := apiclient.ServerMessage(err)
		if msg == "" {
			msg = MsgInvalidToken
		}
		logx.LogError(component, "verify identity", err)
		return Session{Status: Unauthenticated, Message: msg}, true
	}

	profile, err := g.profileFrom(ident)
	if err != nil {
		logx.LogError(component, "resolve profile", err)
		return Session{Status: Unauthenticated, Message: MsgInvalidToken}, true
	}

	if requiredRole != "" && profile.Role != requiredRole {
		return Session{Status: Forbidden, Message: MsgAccessDenied}, true
	}
	return Session{Status: Authenticated, Identity: &profile}, false
}

func (g *Guard) profileFrom(ident apiclient.Identity) (domain.UserProfile, error) {
	role, err := domain.ParseRole(ident.Role.String())
	if err != nil {
		return domain.UserProfile{}, err
	}
	p := domain.UserProfile{
		ID:              ident.ID.String(),
		Name:            ident.Name.String(),
		Email:           ident.Email.String(),
		Role:            role,
		ProfilePhotoURL: ident.ProfilePhotoURL.String(),
	}
	if p.Name == "" {
		p.Name = domain.PlaceholderName(role)
	}
	if p.Email == "" {
		p.Email = domain.PlaceholderEmail(role)
	}
	// a broken photo link is not worth failing the session over
	if p.ProfilePhotoURL != "" && g.validate.Var(p.ProfilePhotoURL, "url") != nil {
		p.ProfilePhotoURL = ""
	}
	if err := g.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.UserProfile{}, fmt.Errorf("session: identity field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return domain.UserProfile{}, err
	}
	return p, nil
}

func (g *Guard) scheduleRedirectLocked(gen uint64) {
	if g.opts.OnRedirect == nil {
		return
	}
	target := g.opts.LoginPath
	t := time.AfterFunc(g.opts.RedirectDelay, func() {
		g.mu.Lock()
		current := g.gen == gen && g.mounted
		g.mu.Unlock()
		if !current {
			return
		}
		logx.LogTransition(component, "redirect", target, "")
		g.opts.OnRedirect(target)
	})
	g.timers = append(g.timers, t)
}

func (g *Guard) stopTimersLocked() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}
