package devapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := NewStore(DefaultUsers, time.Now())
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	srv := NewServer(Options{JWTSecret: testSecret, JWTIssuer: testIssuer, TokenTTL: time.Hour}, store)
	app := httptest.NewServer(srv.Router())
	t.Cleanup(app.Close)
	return srv, app
}

func doReq(t *testing.T, method, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func login(t *testing.T, base, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(loginRequest{Email: email, Password: password})
	resp := doReq(t, http.MethodPost, base+"/api/auth/login", "", bytes.NewReader(body), "application/json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var out struct {
		Data struct {
			Token string   `json:"token"`
			User  identity `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if out.Data.Token == "" || out.Data.User.Email != strings.ToLower(email) {
		t.Fatalf("unexpected login payload %+v", out)
	}
	return out.Data.Token
}

func collectionLen(t *testing.T, resp *http.Response) int {
	t.Helper()
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode collection: %v", err)
	}
	return len(out.Data)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, app := newTestServer(t)
	body := `{"email":"grace@school.test","password":"nope"}`
	resp := doReq(t, http.MethodPost, app.URL+"/api/auth/login", "", strings.NewReader(body), "application/json")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var msg map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&msg)
	if msg["message"] != "invalid credentials" {
		t.Errorf("unexpected error payload %v", msg)
	}
}

func TestMeRequiresToken(t *testing.T) {
	_, app := newTestServer(t)

	if resp := doReq(t, http.MethodGet, app.URL+"/api/auth/me", "", nil, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := doReq(t, http.MethodGet, app.URL+"/api/auth/me", "garbage", nil, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.StatusCode)
	}

	other, _, err := NewAccessToken(testSecret, "someone-else", time.Hour, "x", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if resp := doReq(t, http.MethodGet, app.URL+"/api/auth/me", other, nil, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign issuer, got %d", resp.StatusCode)
	}

	token := login(t, app.URL, "Grace@School.test", "student123")
	resp := doReq(t, http.MethodGet, app.URL+"/api/auth/me", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me struct {
		Data identity `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&me)
	if me.Data.Role != "student" || me.Data.Name != "Grace Hopper" {
		t.Errorf("unexpected identity %+v", me.Data)
	}
}

func TestCollectionsAreScopedByRole(t *testing.T) {
	_, app := newTestServer(t)

	testCases := []struct {
		email, password string
		path            string
		want            int
	}{
		{"admin@school.test", "admin123", "/api/courses", 4},
		{"ada@school.test", "prof123", "/api/courses", 2},
		{"grace@school.test", "student123", "/api/courses", 3},
		{"grace@school.test", "student123", "/api/enrollments", 3},
		{"grace@school.test", "student123", "/api/grades", 3},
		{"linus@school.test", "student123", "/api/grades", 2},
		{"ada@school.test", "prof123", "/api/content", 3},
		{"alan@school.test", "prof123", "/api/enrollments", 2},
		{"admin@school.test", "admin123", "/api/content?limit=2", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.email+tc.path, func(t *testing.T) {
			token := login(t, app.URL, tc.email, tc.password)
			resp := doReq(t, http.MethodGet, app.URL+tc.path, token, nil, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if got := collectionLen(t, resp); got != tc.want {
				t.Errorf("got %d records, want %d", got, tc.want)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app.URL, "admin@school.test", "admin123")

	if resp := doReq(t, http.MethodPost, app.URL+"/api/auth/logout", token, nil, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp := doReq(t, http.MethodGet, app.URL+"/api/auth/me", token, nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	_, app := newTestServer(t)
	student := login(t, app.URL, "grace@school.test", "student123")
	admin := login(t, app.URL, "admin@school.test", "admin123")

	if resp := doReq(t, http.MethodGet, app.URL+"/api/admin/ping", student, nil, ""); resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for student, got %d", resp.StatusCode)
	}
	if resp := doReq(t, http.MethodGet, app.URL+"/api/admin/ping", admin, nil, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestBrotliResponses(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app.URL, "admin@school.test", "admin123")

	req, _ := http.NewRequest(http.MethodGet, app.URL+"/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept-Encoding", "br")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "br" {
		t.Fatalf("expected br encoding, got %q", resp.Header.Get("Content-Encoding"))
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(brotli.NewReader(resp.Body)).Decode(&out); err != nil {
		t.Fatalf("decode brotli body: %v", err)
	}
	if len(out.Data) != 4 {
		t.Errorf("got %d courses", len(out.Data))
	}
}

func TestAcceptsBrotli(t *testing.T) {
	testCases := map[string]bool{
		"":                  false,
		"gzip":              false,
		"br":                true,
		"gzip, br":          true,
		"BR;q=0.5":          true,
		"br;q=0":            false,
		"gzip;q=1, br; q=0": false,
	}
	for header, want := range testCases {
		if got := acceptsBrotli(header); got != want {
			t.Errorf("acceptsBrotli(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestUploadPhoto(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app.URL, "grace@school.test", "student123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("photo", "me.png")
	_, _ = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...))
	_ = mw.Close()

	resp := doReq(t, http.MethodPost, app.URL+"/api/users/profile-photo", token, &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var out struct {
		Data struct {
			URL string `json:"profile_photo_url"`
		} `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if !strings.HasPrefix(out.Data.URL, app.URL+"/uploads/") || !strings.HasSuffix(out.Data.URL, ".png") {
		t.Fatalf("unexpected url %q", out.Data.URL)
	}

	if resp := doReq(t, http.MethodGet, out.Data.URL, "", nil, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("uploaded photo not served: %d", resp.StatusCode)
	}

	me := doReq(t, http.MethodGet, app.URL+"/api/auth/me", token, nil, "")
	var ident struct {
		Data identity `json:"data"`
	}
	_ = json.NewDecoder(me.Body).Decode(&ident)
	if ident.Data.ProfilePhotoURL != out.Data.URL {
		t.Errorf("profile not updated: %+v", ident.Data)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app.URL, "grace@school.test", "student123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("photo", "notes.txt")
	_, _ = part.Write([]byte("just text"))
	_ = mw.Close()

	resp := doReq(t, http.MethodPost, app.URL+"/api/users/profile-photo", token, &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	login(t, app.URL, "admin@school.test", "admin123")

	resp := doReq(t, http.MethodGet, app.URL+"/metrics", "", nil, "")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `devapi_logins_total{outcome="ok"} 1`) {
		t.Errorf("login counter missing from metrics:\n%s", body)
	}
	if !strings.Contains(string(body), `route="/api/auth/login"`) {
		t.Errorf("route label missing from metrics")
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	token, claims, err := NewAccessToken(testSecret, testIssuer, time.Minute, "u1", "professor")
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseToken(testSecret, testIssuer, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Role != "professor" || parsed.ID != claims.ID {
		t.Errorf("unexpected claims %+v", parsed)
	}
	if _, err := ParseToken("other-secret", testIssuer, token); err == nil {
		t.Error("expected signature failure")
	}

	expired, _, _ := NewAccessToken(testSecret, testIssuer, -time.Minute, "u1", "professor")
	if _, err := ParseToken(testSecret, testIssuer, expired); err == nil {
		t.Error("expected expiry failure")
	}
}
