// Package apiclient talks to the academic API. Every request carries the
// stored bearer credential when there is one; failures are returned typed
// but otherwise uninterpreted.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"academic-dashboard/internal/config"
	"academic-dashboard/internal/httpx"
	"academic-dashboard/internal/logx"
	"academic-dashboard/internal/records"
	"academic-dashboard/internal/tokenstore"
)

const (
	contentTypeJSON = "application/json"
	acceptJSON      = contentTypeJSON
	component       = "apiclient"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  tokenstore.Store
	// Limiter caps outgoing requests; nil means unlimited.
	Limiter *rate.Limiter
}

func New(baseURL string, tokens tokenstore.Store, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// NewFromConfig wires timeout and rate limit from cfg.
func NewFromConfig(cfg config.Config, tokens tokenstore.Store) *Client {
	c := New(cfg.APIBaseURL, tokens, cfg.APITimeout)
	if cfg.APIRateLimit > 0 {
		burst := cfg.APIRateBurst
		if burst <= 0 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimit), burst)
	}
	return c
}

func (c *Client) endpoint(resource string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("apiclient: invalid base url %q", c.BaseURL)
	}
	u.Path = path.Join("/", u.Path, strings.TrimLeft(resource, "/"))
	return u.String(), nil
}

// requestBuilder attaches the credential (when present), a request id and
// JSON accept headers. The token is read at build time so a cleared
// credential is never sent.
func (c *Client) requestBuilder(method, target string, body []byte, contentType string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		r, err := http.NewRequestWithContext(ctx, method, target, rdr)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			r.Header.Set("Content-Type", contentType)
		}
		r.Header.Set("Accept", acceptJSON)
		reqID := uuid.NewString()
		r.Header.Set("X-Request-ID", reqID)

		if c.Tokens != nil {
			tok, ok, err := c.Tokens.Get(ctx)
			if err != nil {
				return nil, fmt.Errorf("apiclient: read credential: %w", err)
			}
			if ok {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		logx.LogRequest(component, method, target, reqID)
		return r, nil
	}
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte, contentType string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
	}
	start := time.Now()
	resp, out, err := httpx.Do(ctx, c.HTTP, c.requestBuilder(method, target, body, contentType))
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		cerr := classify(op, err)
		logx.LogError(component, op, cerr)
		return nil, cerr
	}
	logx.LogResponse(component, status, time.Since(start), -1)
	return out, nil
}

// VerifyIdentity resolves the identity behind the stored credential.
func (c *Client) VerifyIdentity(ctx context.Context) (Identity, error) {
	target, err := c.endpoint("/auth/me")
	if err != nil {
		return Identity{}, err
	}
	body, err := c.do(ctx, "verify identity", http.MethodGet, target, nil, "")
	if err != nil {
		return Identity{}, err
	}
	var env identityEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Identity{}, &TransportError{Op: "verify identity", Err: fmt.Errorf("json parse error: %w body=%s", err, httpx.Snippet(body, 300))}
	}
	return env.unwrap(), nil
}

// FetchCollection reads GET {base}/{resource}. The payload may be
// {"data":[...]} or a bare array; non-object items are skipped.
func (c *Client) FetchCollection(ctx context.Context, resource string, opts FetchOptions) ([]records.Raw, error) {
	op := "fetch " + resource
	target, err := c.endpoint(resource)
	if err != nil {
		return nil, err
	}
	if len(opts.Query) > 0 {
		u, _ := url.Parse(target)
		q := u.Query()
		for k, v := range opts.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := c.do(ctx, op, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}

	rows, err := decodeCollection(body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	logx.LogResponse(component+"/"+resource, http.StatusOK, time.Since(start), len(rows))
	return rows, nil
}

func decodeCollection(body []byte) ([]records.Raw, error) {
	var top any
	if err := httpx.DecodeJSON(body, &top); err != nil {
		return nil, err
	}

	var items []any
	switch t := top.(type) {
	case []any:
		items = t
	case map[string]any:
		switch d := t["data"].(type) {
		case []any:
			items = d
		case nil:
			items = nil
		default:
			return nil, errors.New("collection payload: data is not an array")
		}
	default:
		return nil, errors.New("collection payload: unexpected shape")
	}

	out := make([]records.Raw, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (Identity, error) {
	target, err := c.endpoint("/auth/login")
	if err != nil {
		return Identity{}, err
	}
	b, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return Identity{}, err
	}
	body, err := c.do(ctx, "login", http.MethodPost, target, b, contentTypeJSON)
	if err != nil {
		return Identity{}, err
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return Identity{}, &TransportError{Op: "login", Err: fmt.Errorf("json parse error: %w", err)}
	}
	tok := lr.token()
	if tok == "" {
		return Identity{}, errors.New("apiclient: login: token not found in response")
	}
	if err := c.Tokens.Set(ctx, tok); err != nil {
		return Identity{}, err
	}
	return lr.user(), nil
}

// Logout tells the server (best effort) and always clears the credential.
func (c *Client) Logout(ctx context.Context) error {
	if target, err := c.endpoint("/auth/logout"); err == nil {
		if _, err := c.do(ctx, "logout", http.MethodPost, target, nil, ""); err != nil {
			logx.LogError(component, "logout (ignored)", err)
		}
	}
	return c.Tokens.Clear(ctx)
}

// UploadProfilePhoto sends the file as multipart field "photo" and returns
// the new photo URL.
func (c *Client) UploadProfilePhoto(ctx context.Context, filename string, file io.Reader) (string, error) {
	target, err := c.endpoint("/users/profile-photo")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", path.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("apiclient: read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	body, err := c.do(ctx, "upload profile photo", http.MethodPost, target, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var pr photoResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", &TransportError{Op: "upload profile photo", Err: fmt.Errorf("json parse error: %w", err)}
	}
	if pr.Data.ProfilePhotoURL == "" {
		return "", errors.New("apiclient: upload profile photo: missing profile_photo_url")
	}
	return pr.Data.ProfilePhotoURL, nil
}
