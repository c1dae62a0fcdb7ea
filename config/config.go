package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	// PublicURL is the externally reachable base URL of this server, used to
	// build the magic-link callback address (e.g. https://board.example.com).
	PublicURL string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IdentityBackend selects the identity collaborator implementation.
type IdentityBackend string

const (
	// IdentityBackendHosted talks to a hosted GoTrue-style identity API.
	IdentityBackendHosted IdentityBackend = "hosted"
	// IdentityBackendLocal stores users in our own Postgres and issues tokens itself.
	IdentityBackendLocal IdentityBackend = "local"
)

// IdentityConfig holds identity provider settings.
type IdentityConfig struct {
	Backend   IdentityBackend
	URL       string // hosted: base URL of the identity API
	AnonKey   string // hosted: public API key sent with every request
	JWTSecret string // shared HS256 secret used to verify (and locally issue) access tokens
	// TokenExpireHours applies to locally issued tokens only.
	TokenExpireHours int
}

// EmailConfig holds SMTP settings for the mail worker.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
// The hosted identity backend requires IDENTITY_URL and IDENTITY_ANON_KEY;
// a missing value is a startup error naming the variable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "15"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "15"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			PublicURL:          getEnv("PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "reindeer_games"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Identity: IdentityConfig{
			Backend:          IdentityBackend(getEnv("IDENTITY_BACKEND", string(IdentityBackendHosted))),
			URL:              os.Getenv("IDENTITY_URL"),
			AnonKey:          os.Getenv("IDENTITY_ANON_KEY"),
			JWTSecret:        getEnv("IDENTITY_JWT_SECRET", "change-me-in-production"),
			TokenExpireHours: getEnvInt("IDENTITY_TOKEN_EXPIRE_HOURS", 24),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@reindeergames.local"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Reindeer Games"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
	}

	switch cfg.Identity.Backend {
	case IdentityBackendHosted:
		if cfg.Identity.URL == "" {
			return nil, fmt.Errorf("missing required environment variable: IDENTITY_URL")
		}
		if cfg.Identity.AnonKey == "" {
			return nil, fmt.Errorf("missing required environment variable: IDENTITY_ANON_KEY")
		}
	case IdentityBackendLocal:
		// self-contained, nothing extra required
	default:
		return nil, fmt.Errorf("unknown IDENTITY_BACKEND %q (want %q or %q)",
			cfg.Identity.Backend, IdentityBackendHosted, IdentityBackendLocal)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
