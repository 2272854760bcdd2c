// Package fetch loads the collections a screen needs once its session is
// authenticated. All requests of one run succeed together or the run fails.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"academic-dashboard/internal/apiclient"
	"academic-dashboard/internal/concurrency"
	"academic-dashboard/internal/domain"
	"academic-dashboard/internal/logx"
	"academic-dashboard/internal/records"
	"academic-dashboard/internal/session"
)

const component = "fetch"

// MsgLoadFailed is shown for any failure that carries no server message.
const MsgLoadFailed = "could not load data"

// Resource is a collection path on the API.
type Resource string

const (
	Courses     Resource = "courses"
	Enrollments Resource = "enrollments"
	Grades      Resource = "grades"
	Contents    Resource = "content"
)

// ErrUnknownResource is returned for a Resource outside the set above.
var ErrUnknownResource = errors.New("unknown resource")

type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Collector is the slice of the API client the fetcher needs.
type Collector interface {
	FetchCollection(ctx context.Context, resource string, opts apiclient.FetchOptions) ([]records.Raw, error)
}

type Request struct {
	Resource Resource
	// Timeout overrides the fetcher default; <=0 keeps it.
	Timeout time.Duration
	Query   map[string]string
}

// Collections holds the normalized records of a successful run. Resources
// that were not requested stay empty.
type Collections struct {
	Courses     []domain.Course     `json:"courses" yaml:"courses"`
	Enrollments []domain.Enrollment `json:"enrollments" yaml:"enrollments"`
	Grades      []domain.Grade      `json:"grades" yaml:"grades"`
	Contents    []domain.Content    `json:"contents" yaml:"contents"`
	// Dropped lists records excluded by normalization.
	Dropped []error `json:"-" yaml:"-"`
}

func emptyCollections() Collections {
	return Collections{
		Courses:     []domain.Course{},
		Enrollments: []domain.Enrollment{},
		Grades:      []domain.Grade{},
		Contents:    []domain.Content{},
	}
}

// Snapshot is the tri-state result handed to consumers. Err keeps the
// underlying failure for callers that need errors.As.
type Snapshot struct {
	State   State
	Data    Collections
	Message string
	Err     error
}

type Fetcher struct {
	client  Collector
	timeout time.Duration
	opts    concurrency.ParallelOptions

	mu   sync.Mutex
	snap Snapshot
	gen  uint64
}

// New returns a fetcher whose requests default to timeout (<=0 = none).
func New(client Collector, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: timeout,
		opts:    concurrency.DefaultOptions(),
		snap:    Snapshot{State: Loading},
	}
}

func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Cancel makes any in-flight run stale; its result will not be applied.
func (f *Fetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
}

// Run issues every request concurrently once sess is authenticated and
// commits the joined result. With any other session status nothing is
// issued and the fetcher stays Loading. A run superseded by a later Run or
// Cancel, or whose ctx ends, returns the current snapshot unchanged.
func (f *Fetcher) Run(ctx context.Context, sess session.Session, reqs ...Request) Snapshot {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	if sess.Status != session.Authenticated {
		f.snap = Snapshot{State: Loading}
		f.mu.Unlock()
		return Snapshot{State: Loading}
	}
	f.snap = Snapshot{State: Loading}
	f.mu.Unlock()

	next := f.load(ctx, reqs)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || ctx.Err() != nil {
		logx.LogTransition(component, "stale run", next.State.String(), "ignored")
		return f.snap
	}
	f.snap = next
	logx.LogTransition(component, Loading.String(), next.State.String(), next.Message)
	return next
}

func (f *Fetcher) load(ctx context.Context, reqs []Request) Snapshot {
	fns := make([]func(context.Context) ([]records.Raw, error), len(reqs))
	for i, req := range reqs {
		if !known(req.Resource) {
			err := fmt.Errorf("fetch: %w: %q", ErrUnknownResource, req.Resource)
			return failed(err)
		}
		opts := apiclient.FetchOptions{Timeout: f.timeout, Query: req.Query}
		if req.Timeout > 0 {
			opts.Timeout = req.Timeout
		}
		fns[i] = func(ctx context.Context) ([]records.Raw, error) {
			return f.client.FetchCollection(ctx, string(req.Resource), opts)
		}
	}

	raws, err := concurrency.All(ctx, f.opts, fns...)
	if err != nil {
		logx.LogError(component, "load", err)
		return failed(err)
	}

	data := emptyCollections()
	for i, req := range reqs {
		switch req.Resource {
		case Courses:
			data.Courses = records.NormalizeCourses(raws[i])
		case Enrollments:
			data.Enrollments = records.NormalizeEnrollments(raws[i])
		case Grades:
			var dropped []error
			data.Grades, dropped = records.NormalizeGrades(raws[i])
			data.Dropped = append(data.Dropped, dropped...)
		case Contents:
			data.Contents = records.NormalizeContents(raws[i])
		}
	}
	return Snapshot{State: Ready, Data: data}
}

func failed(err error) Snapshot {
	return Snapshot{State: Failed, Message: Message(err), Err: err}
}

// Message is the user-facing text for a failed run: the server's message
// for authentication and authorization failures, MsgLoadFailed otherwise.
func Message(err error) string {
	var aerr *apiclient.AuthenticationError
	var ferr *apiclient.AuthorizationError
	if errors.As(err, &aerr) || errors.As(err, &ferr) {
		if msg := apiclient.ServerMessage(err); msg != "" {
			return msg
		}
	}
	return MsgLoadFailed
}

func known(r Resource) bool {
	switch r {
	case Courses, Enrollments, Grades, Contents:
		return true
	}
	return false
}
