package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel slog.Level
	Auth     AuthConfig
	Store    StoreConfig
	Redis    RedisConfig
}

// AuthConfig holds the shared admin secret and session cookie settings.
// The admin password is compared in plaintext; there is no hashing and no
// lockout.
type AuthConfig struct {
	AdminPassword string
	SessionStore  string // memory | redis
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
}

// StoreConfig selects and configures the catalog document backend.
type StoreConfig struct {
	Driver      string // file | sqlite | postgres | s3 | redis | memory
	DataFile    string
	SQLitePath  string
	PostgresDSN string
	S3          S3Config
	RedisKey    string
}

// S3Config holds explicit S3 parameters; credentials fall back to the default
// AWS chain when the key pair is empty.
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// RedisConfig mirrors the go-redis pool options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client configures the CLI's connection to a running server.
type Client struct {
	ServerURL string
	Password  string
	Timeout   time.Duration
}

const (
	DefaultAddr          = ":4567"
	DefaultAdminPassword = "admin123"
	DefaultDataFile      = "data.json"
	DefaultSQLitePath    = "database.db"
	DefaultDocumentKey   = "baias/data.json"
	DefaultRedisKey      = "baias:catalog"
	DefaultCookieName    = "baias_session"
	DefaultSessionTTL    = 12 * time.Hour
	DefaultServerURL     = "http://localhost:4567"
	DefaultClientTimeout = 10 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:     getEnv("BAIAS_ADDR", DefaultAddr),
		LogLevel: parseLevel(os.Getenv("BAIAS_LOG_LEVEL")),
		Auth: AuthConfig{
			// Development default; override in any shared deployment.
			AdminPassword: getEnv("BAIAS_ADMIN_PASSWORD", DefaultAdminPassword),
			SessionStore:  getEnv("BAIAS_SESSION_STORE", "memory"),
			SessionTTL:    getDuration("BAIAS_SESSION_TTL", DefaultSessionTTL),
			CookieName:    getEnv("BAIAS_COOKIE_NAME", DefaultCookieName),
			CookieSecure:  os.Getenv("BAIAS_COOKIE_SECURE") == "true",
		},
		Store: StoreConfig{
			Driver:      getEnv("BAIAS_STORE_DRIVER", "file"),
			DataFile:    getEnv("BAIAS_DATA_FILE", DefaultDataFile),
			SQLitePath:  getEnv("BAIAS_SQLITE_PATH", DefaultSQLitePath),
			PostgresDSN: os.Getenv("BAIAS_POSTGRES_DSN"),
			RedisKey:    getEnv("BAIAS_REDIS_DOCUMENT_KEY", DefaultRedisKey),
			S3: S3Config{
				Bucket:          os.Getenv("BAIAS_S3_BUCKET"),
				Key:             getEnv("BAIAS_S3_KEY", DefaultDocumentKey),
				Region:          os.Getenv("BAIAS_S3_REGION"),
				Endpoint:        os.Getenv("BAIAS_S3_ENDPOINT"),
				AccessKeyID:     os.Getenv("BAIAS_S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("BAIAS_S3_SECRET_ACCESS_KEY"),
				PathStyle:       strings.EqualFold(os.Getenv("BAIAS_S3_PATH_STYLE"), "true"),
			},
		},
		Redis: RedisConfig{
			URL:          os.Getenv("BAIAS_REDIS_URL"),
			PoolSize:     getInt("BAIAS_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("BAIAS_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("BAIAS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("BAIAS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("BAIAS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

// ClientFromEnv builds the CLI client config. The password is only read
// from the environment; commands that need it may prompt instead.
func ClientFromEnv() Client {
	return Client{
		ServerURL: getEnv("BAIAS_SERVER_URL", DefaultServerURL),
		Password:  os.Getenv("BAIAS_ADMIN_PASSWORD"),
		Timeout:   getDuration("BAIAS_CLIENT_TIMEOUT", DefaultClientTimeout),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
