// Package dashboard wires the guard, the fetcher and the view builders into
// role screens.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/config"
	"academic-dashboard/internal/fetch"
	"academic-dashboard/internal/session"
	"academic-dashboard/internal/tokenstore"
	"academic-dashboard/internal/view"
)

// SessionError reports a screen that did not get past the guard.
type SessionError struct {
	Session session.Session
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("dashboard: %s: %s", e.Session.Status, e.Session.Message)
}

// FetchError reports a screen whose collections could not be loaded.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dashboard: %s: %v", e.Message, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Runner runs screens for one screen instance: it owns a Guard and a
// Fetcher and must not be shared between concurrently rendered screens.
type Runner struct {
	Guard   *session.Guard
	Fetcher *fetch.Fetcher
	Now     func() time.Time
}

// NewRunner builds the guard and fetcher on top of client.
func NewRunner(cfg config.Config, tokens tokenstore.Store, client *apiclient.Client, onRedirect func(string)) *Runner {
	return &Runner{
		Guard: session.NewGuard(tokens, client, session.Options{
			RedirectDelay: cfg.RedirectDelay,
			LoginPath:     cfg.LoginPath,
			OnRedirect:    onRedirect,
		}),
		Fetcher: fetch.New(client, cfg.CollectionWait),
		Now:     time.Now,
	}
}

// Run mounts the guard for the screen's role, loads its collections once
// authenticated and builds the view. Failures come back as *SessionError
// or *FetchError.
func (r *Runner) Run(ctx context.Context, s Screen, f view.Filter) (View, error) {
	sess := r.Guard.Mount(ctx, s.Role)
	if sess.Status != session.Authenticated {
		return View{}, &SessionError{Session: sess}
	}

	reqs := make([]fetch.Request, len(s.Resources))
	for i, res := range s.Resources {
		reqs[i] = fetch.Request{Resource: res}
	}
	snap := r.Fetcher.Run(ctx, sess, reqs...)
	switch snap.State {
	case fetch.Failed:
		r.rejectOnAuthFailure(ctx, snap.Err)
		return View{}, &FetchError{Message: snap.Message, Err: snap.Err}
	case fetch.Loading:
		// superseded or cancelled
		if err := ctx.Err(); err != nil {
			return View{}, err
		}
		return View{}, &FetchError{Message: fetch.MsgLoadFailed, Err: errors.New("fetch superseded")}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	v := s.Build(snap.Data, f, now())
	v.Screen = s.Name
	v.Title = s.Title
	v.Filter = f
	v.Dropped = len(snap.Data.Dropped)
	if p, ok := sess.Profile(); ok {
		v.User = p
	}
	return v, nil
}

// Close tears the screen down; pending redirects and in-flight loads are
// dropped.
func (r *Runner) Close() {
	r.Guard.Unmount()
	r.Fetcher.Cancel()
}

// rejectOnAuthFailure ends the session when a collection request was
// refused for credential reasons.
func (r *Runner) rejectOnAuthFailure(ctx context.Context, err error) {
	var aerr *apiclient.AuthenticationError
	var ferr *apiclient.AuthorizationError
	switch {
	case errors.As(err, &aerr):
		r.Guard.Reject(ctx, session.Unauthenticated, apiclient.ServerMessage(err))
	case errors.As(err, &ferr):
		r.Guard.Reject(ctx, session.Forbidden, apiclient.ServerMessage(err))
	}
}
