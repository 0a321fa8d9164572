package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Event visibility policies for the home listing.
const (
	VisibilityHideClosed = "hide"
	VisibilityMarkClosed = "mark"
)

// Object storage drivers.
const (
	StorageDriverLocal  = "local"
	StorageDriverRemote = "remote"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Log           LogConfig
	Storage       StorageConfig
	Exports       ExportsConfig
	Stats         StatsConfig
	Events        EventsConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig describes how sessions issued by the hosted identity provider are verified.
type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	Audience    string
	BackendURL  string
	Provider    string
	RedirectURL string
	RoleMemoTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where uploaded event images go.
type StorageConfig struct {
	Driver        string
	LocalDir      string
	PublicBaseURL string
	RemoteURL     string
	ServiceKey    string
	Bucket        string
	MaxImageBytes int64
	AllowedMIMEs  []string
}

// ExportsConfig controls roster export files and their signed download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// StatsConfig governs caching of the aggregated participants view.
type StatsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// EventsConfig holds listing policy knobs.
type EventsConfig struct {
	Visibility string
	Timezone   string
}

// NotificationsConfig toggles registration confirmation emails.
type NotificationsConfig struct {
	Enabled      bool
	ResendAPIKey string
	From         string
	Workers      int
	Retries      int
}

// RateLimitConfig throttles mutating endpoints per session.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:   v.GetString("AUTH_JWT_SECRET"),
		Issuer:      v.GetString("AUTH_ISSUER"),
		Audience:    v.GetString("AUTH_AUDIENCE"),
		BackendURL:  strings.TrimRight(v.GetString("AUTH_BACKEND_URL"), "/"),
		Provider:    v.GetString("AUTH_PROVIDER"),
		RedirectURL: v.GetString("AUTH_REDIRECT_URL"),
		RoleMemoTTL: parseDuration(v.GetString("AUTH_ROLE_MEMO_TTL"), 30*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxImage := v.GetInt64("STORAGE_MAX_IMAGE_SIZE")
	if maxImage <= 0 {
		maxImage = 5 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:      v.GetString("STORAGE_LOCAL_DIR"),
		PublicBaseURL: strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		RemoteURL:     strings.TrimRight(v.GetString("STORAGE_REMOTE_URL"), "/"),
		ServiceKey:    v.GetString("STORAGE_SERVICE_KEY"),
		Bucket:        v.GetString("STORAGE_BUCKET"),
		MaxImageBytes: maxImage,
		AllowedMIMEs:  splitAndTrim(v.GetString("STORAGE_ALLOWED_MIME_TYPES")),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 15*time.Minute),
	}

	cfg.Stats = StatsConfig{
		CacheEnabled: v.GetBool("STATS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("STATS_CACHE_TTL"), time.Minute),
	}

	visibility := strings.ToLower(v.GetString("EVENTS_VISIBILITY"))
	if visibility != VisibilityMarkClosed {
		visibility = VisibilityHideClosed
	}
	cfg.Events = EventsConfig{
		Visibility: visibility,
		Timezone:   v.GetString("EVENTS_TIMEZONE"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:      v.GetBool("ENABLE_NOTIFICATIONS"),
		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		From:         v.GetString("NOTIFICATIONS_FROM"),
		Workers:      v.GetInt("NOTIFICATIONS_WORKERS"),
		Retries:      v.GetInt("NOTIFICATIONS_RETRIES"),
	}

	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
		Burst:             v.GetInt("RATE_LIMIT_BURST"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_ISSUER", "")
	v.SetDefault("AUTH_AUDIENCE", "authenticated")
	v.SetDefault("AUTH_BACKEND_URL", "http://localhost:54321/auth/v1")
	v.SetDefault("AUTH_PROVIDER", "google")
	v.SetDefault("AUTH_REDIRECT_URL", "http://localhost:5173/auth/callback")
	v.SetDefault("AUTH_ROLE_MEMO_TTL", "30s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("STORAGE_REMOTE_URL", "")
	v.SetDefault("STORAGE_SERVICE_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "event-images")
	v.SetDefault("STORAGE_MAX_IMAGE_SIZE", 5*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp,image/gif")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "15m")

	v.SetDefault("STATS_CACHE_ENABLED", false)
	v.SetDefault("STATS_CACHE_TTL", "1m")

	v.SetDefault("EVENTS_VISIBILITY", VisibilityHideClosed)
	v.SetDefault("EVENTS_TIMEZONE", "UTC")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("NOTIFICATIONS_FROM", "College Fest <noreply@example.com>")
	v.SetDefault("NOTIFICATIONS_WORKERS", 1)
	v.SetDefault("NOTIFICATIONS_RETRIES", 3)

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

// Location resolves the configured event timezone, falling back to UTC.
func (c EventsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
