package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Remote API
	APIBaseURL     string
	APITimeout     time.Duration
	APIRateLimit   float64 // requests per second, <=0 disables the limiter
	APIRateBurst   int
	CollectionWait time.Duration // per-collection timeout used by screens

	// Session
	RedirectDelay time.Duration
	LoginPath     string

	// Token store: "file" (default), "memory", "redis"
	TokenStore    string
	TokenFile     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	RedisTokenTTL time.Duration

	// SFTP (report upload)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool

	// Dev API
	DevAPIAddr      string
	DevAPIJWTSecret string
	DevAPIJWTIssuer string
	DevAPITokenTTL  time.Duration
}

// Load reads .env.local / .env when present and then the process environment.
// Existing env vars always win over dotenv files.
func Load() Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	return Config{
		APIBaseURL:     strings.TrimRight(getenv("DASHBOARD_API_URL", "http://127.0.0.1:8085/api"), "/"),
		APITimeout:     getenvDuration("DASHBOARD_API_TIMEOUT", 30*time.Second),
		APIRateLimit:   getenvFloat("DASHBOARD_API_RPS", 10),
		APIRateBurst:   getenvInt("DASHBOARD_API_BURST", 5),
		CollectionWait: getenvDuration("DASHBOARD_COLLECTION_TIMEOUT", 10*time.Second),

		RedirectDelay: getenvDuration("DASHBOARD_REDIRECT_DELAY", 2000*time.Millisecond),
		LoginPath:     getenv("DASHBOARD_LOGIN_PATH", "/login"),

		TokenStore:    strings.ToLower(getenv("DASHBOARD_TOKEN_STORE", "file")),
		TokenFile:     getenv("DASHBOARD_TOKEN_FILE", defaultTokenFile()),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisKey:      getenv("DASHBOARD_REDIS_KEY", "academic-dashboard:token"),
		RedisTokenTTL: getenvDuration("DASHBOARD_REDIS_TOKEN_TTL", 24*time.Hour),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),

		DevAPIAddr:      getenv("DEVAPI_ADDR", ":8085"),
		DevAPIJWTSecret: getenv("DEVAPI_JWT_SECRET", "dev-secret"),
		DevAPIJWTIssuer: getenv("DEVAPI_JWT_ISSUER", "academic-dashboard-devapi"),
		DevAPITokenTTL:  getenvDuration("DEVAPI_TOKEN_TTL", 24*time.Hour),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".dashboard-token"
	}
	return filepath.Join(dir, "academic-dashboard", "token")
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("2s") or plain milliseconds ("2000").
func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
