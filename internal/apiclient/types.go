package apiclient

import (
	"encoding/json"
	"strings"
	"time"
)

// Identity is the verify-identity payload as sent by the server. Role is
// left unchecked here; the session guard owns that decision.
type Identity struct {
	ID              flexString `json:"id"`
	Name            flexString `json:"name"`
	Email           flexString `json:"email"`
	Role            flexString `json:"role"`
	ProfilePhotoURL flexString `json:"profile_photo_url"`
}

// identityEnvelope accepts the bare object, {"data":{...}} or {"user":{...}}.
type identityEnvelope struct {
	Identity
	Data *Identity `json:"data"`
	User *Identity `json:"user"`
}

func (e identityEnvelope) unwrap() Identity {
	if e.Data != nil {
		return *e.Data
	}
	if e.User != nil {
		return *e.User
	}
	return e.Identity
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	AccessToken string    `json:"access_token"`
	User        *Identity `json:"user"`
	Data        *struct {
		Token       string    `json:"token"`
		AccessToken string    `json:"access_token"`
		User        *Identity `json:"user"`
	} `json:"data"`
}

func (r loginResponse) token() string {
	if r.Data != nil {
		return firstNonEmpty(r.Data.Token, r.Data.AccessToken)
	}
	return firstNonEmpty(r.Token, r.AccessToken)
}

func (r loginResponse) user() Identity {
	if r.Data != nil && r.Data.User != nil {
		return *r.Data.User
	}
	if r.User != nil {
		return *r.User
	}
	return Identity{}
}

type photoResponse struct {
	Data struct {
		ProfilePhotoURL string `json:"profile_photo_url"`
	} `json:"data"`
}

// FetchOptions tunes a single collection read.
type FetchOptions struct {
	Timeout time.Duration
	Query   map[string]string
}

// flexString puede venir como:
// - "abc" (string)
// - 42 (number)
// - null
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// objects/arrays/bools carry nothing useful for identity fields
	*f = ""
	return nil
}

func (f flexString) String() string { return string(f) }

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
