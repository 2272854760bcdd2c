// Package devapi is a local stand-in for the academic API: login, identity,
// the four collections and photo upload, backed by a seeded in-memory store.
package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"academic-dashboard/internal/config"
)

const maxPhotoBytes = 5 << 20

type Options struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	// PublicURL prefixes uploaded photo links; "" uses the request host.
	PublicURL string
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		JWTSecret: cfg.DevAPIJWTSecret,
		JWTIssuer: cfg.DevAPIJWTIssuer,
		TokenTTL:  cfg.DevAPITokenTTL,
	}
}

type Server struct {
	opts     Options
	store    *Store
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	logins   *prometheus.CounterVec
}

func NewServer(opts Options, store *Store) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		store:    store,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devapi_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devapi_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(s.requests, s.logins)
	return s
}

type claimsKey struct{}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/uploads/{name}", s.handleGetPhoto)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/auth/me", s.handleGetMe)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/courses", s.collection(s.store.Courses))
			r.Get("/enrollments", s.collection(s.store.Enrollments))
			r.Get("/grades", s.collection(s.store.Grades))
			r.Get("/content", s.collection(s.store.Contents))
			r.Post("/users/profile-photo", s.handleUploadPhoto)
		})

		r.With(s.authMiddleware, s.requireRole("admin")).Get("/admin/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identity struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}

func identityOf(u User) identity {
	return identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, ProfilePhotoURL: u.PhotoURL}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	u, ok := s.store.Authenticate(req.Email, req.Password)
	if !ok {
		s.logins.WithLabelValues("rejected").Inc()
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, _, err := NewAccessToken(s.opts.JWTSecret, s.opts.JWTIssuer, s.opts.TokenTTL, u.ID, u.Role)
	if err != nil {
		log.Printf("[devapi] sign token error: %v", err)
		writeError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	s.logins.WithLabelValues("ok").Inc()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"data": map[string]any{"token": token, "user": identityOf(u)},
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	u, ok := s.store.UserByID(claims.UserID)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "user not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": identityOf(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	exp := time.Now()
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.store.Revoke(claims.ID, exp)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) collection(read func(userID, role string) []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		rows := read(claims.UserID, claims.Role)
		rows = limit(rows, r.URL.Query().Get("limit"))
		writeJSON(w, r, http.StatusOK, map[string]any{"data": rows})
	}
}

func limit(rows []map[string]any, raw string) []map[string]any {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "photo is too large")
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		writeError(w, r, http.StatusUnsupportedMediaType, "photo must be an image")
		return
	}

	name := uuid.NewString() + path.Ext(header.Filename)
	url := s.publicURL(r) + "/uploads/" + name
	s.store.SavePhoto(claims.UserID, name, data, url)
	writeJSON(w, r, http.StatusCreated, map[string]any{
		"data": map[string]string{"profile_photo_url": url},
	})
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	data, ok := s.store.Photo(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (s *Server) publicURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := ParseToken(s.opts.JWTSecret, s.opts.JWTIssuer, token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		if s.store.Revoked(claims.ID) {
			writeError(w, r, http.StatusUnauthorized, "token revoked")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claimsFrom(r.Context()).Role != role {
				writeError(w, r, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		log.Printf("[devapi] %s %s status=%d duration=%dms", r.Method, r.URL.Path, status, time.Since(start).Milliseconds())
	})
}

func claimsFrom(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey{}).(*Claims); ok {
		return c
	}
	return &Claims{}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func decodeJSON(r *http.Request, out interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

// writeJSON brotli-compresses the body when the client accepts it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Vary", "Accept-Encoding")
	if !acceptsBrotli(r.Header.Get("Accept-Encoding")) {
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Encoding", "br")
	w.WriteHeader(status)
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	_, _ = bw.Write(buf.Bytes())
	_ = bw.Close()
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"message": message})
}

func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(enc), "br") {
			continue
		}
		q := 1.0
		if v, ok := strings.CutPrefix(strings.ReplaceAll(params, " ", ""), "q="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				q = f
			}
		}
		return q > 0
	}
	return false
}
