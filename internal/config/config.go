package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret is only accepted when APP_ENV is development.
const defaultJWTSecret = "dev-secret"

// StorageBackend selects where the bearer token is persisted.
type StorageBackend string

const (
	StorageLocal   StorageBackend = "local"
	StorageSession StorageBackend = "session"
	StorageCookie  StorageBackend = "cookie"
)

// StateBackend selects where session state lives.
type StateBackend string

const (
	StateMemory StateBackend = "memory"
	StateRedis  StateBackend = "redis"
)

// Config aggregates runtime configuration for the console gateway.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Backend  BackendConfig
	Storage  StorageConfig
	Session  SessionConfig
	OAuth    OAuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the persistent token store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session and navigation parameters.
type AuthConfig struct {
	JWTSecret                string
	AuthenticatedEntryPath   string
	UnauthenticatedEntryPath string
	AccessDeniedPath         string
	RedirectURLKey           string
	AuthorityOpenDefault     bool
}

// BackendConfig describes the upstream REST API.
type BackendConfig struct {
	BaseURL        string
	APIPrefix      string
	ProfilePath    string
	TimeoutSeconds int
	RetryCount     int
	RetryDelayMS   int
}

// StorageConfig selects and tunes the token storage backend.
type StorageConfig struct {
	Backend       StorageBackend
	EncryptionKey string
	Cookie        CookieConfig
}

// CookieConfig holds the attributes of the cookie token backend.
type CookieConfig struct {
	ExpiresDays int
	Secure      bool
	SameSite    string
	Domain      string
}

// SessionConfig controls the client session cookie and state storage.
type SessionConfig struct {
	CookieName string
	TTLMinutes int
	State      StateBackend
}

// OAuthConfig holds provider credentials. A provider without a client id and
// secret stays disabled.
type OAuthConfig struct {
	RedirectBaseURL    string
	DefaultAuthority   []string
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	storage := StorageBackend(strings.ToLower(getEnv("TOKEN_STORAGE", string(StorageLocal))))
	switch storage {
	case StorageLocal, StorageSession, StorageCookie:
	default:
		return nil, fmt.Errorf("invalid TOKEN_STORAGE %q: want local, session or cookie", storage)
	}

	state := StateBackend(strings.ToLower(getEnv("SESSION_STATE_BACKEND", string(StateRedis))))
	switch state {
	case StateMemory, StateRedis:
	default:
		return nil, fmt.Errorf("invalid SESSION_STATE_BACKEND %q: want memory or redis", state)
	}

	sameSite := strings.ToLower(getEnv("COOKIE_SAME_SITE", "strict"))
	switch sameSite {
	case "strict", "lax", "none":
	default:
		return nil, fmt.Errorf("invalid COOKIE_SAME_SITE %q: want strict, lax or none", sameSite)
	}

	appEnv := getEnv("APP_ENV", "development")
	jwtSecret := getEnv("AUTH_JWT_SECRET", defaultJWTSecret)
	encryptionKey := getEnv("TOKEN_ENCRYPTION_KEY", jwtSecret)
	if appEnv != "development" {
		if jwtSecret == defaultJWTSecret {
			return nil, fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV=%s", appEnv)
		}
		if encryptionKey == defaultJWTSecret {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must not be the development default when APP_ENV=%s", appEnv)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "backoffice-console"),
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 150),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                jwtSecret,
			AuthenticatedEntryPath:   getEnv("AUTH_AUTHENTICATED_ENTRY", "/home"),
			UnauthenticatedEntryPath: getEnv("AUTH_UNAUTHENTICATED_ENTRY", "/sign-in"),
			AccessDeniedPath:         getEnv("AUTH_ACCESS_DENIED_ENTRY", "/access-denied"),
			RedirectURLKey:           getEnv("AUTH_REDIRECT_URL_KEY", "redirectUrl"),
			AuthorityOpenDefault:     getEnvAsBool("AUTHORITY_OPEN_DEFAULT", true),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", "http://127.0.0.1:3000"),
			APIPrefix:      getEnv("BACKEND_API_PREFIX", "/api"),
			ProfilePath:    getEnv("BACKEND_PROFILE_PATH", "/profile"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 120),
			RetryCount:     getEnvAsInt("BACKEND_RETRY_COUNT", 3),
			RetryDelayMS:   getEnvAsInt("BACKEND_RETRY_DELAY_MS", 1000),
		},
		Storage: StorageConfig{
			Backend:       storage,
			EncryptionKey: encryptionKey,
			Cookie: CookieConfig{
				ExpiresDays: getEnvAsInt("COOKIE_EXPIRES_DAYS", 1),
				Secure:      getEnvAsBool("COOKIE_SECURE", true),
				SameSite:    sameSite,
				Domain:      os.Getenv("COOKIE_DOMAIN"),
			},
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "console_sid"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 720),
			State:      state,
		},
		OAuth: OAuthConfig{
			RedirectBaseURL:    getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),
			DefaultAuthority:   getEnvAsList("OAUTH_DEFAULT_AUTHORITY", []string{"user"}),
			GoogleClientID:     os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     os.Getenv("OAUTH_GITHUB_CLIENT_ID"),
			GitHubClientSecret: os.Getenv("OAUTH_GITHUB_CLIENT_SECRET"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-attempt deadline for backend calls.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RetryDelay returns the linear backoff step between retries.
func (b BackendConfig) RetryDelay() time.Duration {
	if b.RetryDelayMS < 0 {
		return 0
	}
	return time.Duration(b.RetryDelayMS) * time.Millisecond
}

// TTL returns how long an idle session is kept.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Expiry returns the lifetime of the token cookie.
func (c CookieConfig) Expiry() time.Duration {
	if c.ExpiresDays <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpiresDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
