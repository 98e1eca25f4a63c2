package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Email    EmailConfig
	Contact  ContactConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name      string `env:"APP_NAME" envDefault:"Portfolio Backend"`
	Version   string `env:"APP_VERSION" envDefault:"1.0.0"`
	Debug     bool   `env:"DEBUG" envDefault:"false"`
	Port      string `env:"PORT" envDefault:"5000"`
	Host      string `env:"HOST" envDefault:"0.0.0.0"`
	StaticDir string `env:"STATIC_DIR" envDefault:"."`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// DatabaseConfig holds record store configuration.
// The variable keeps its historical MONGODB_URI name; the scheme of the URI
// selects the backend.
type DatabaseConfig struct {
	URI     string        `env:"MONGODB_URI"`
	Timeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	ClientURL      string   `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,HEAD,PUT,PATCH,POST,DELETE" envSeparator:","`
	MaxAge         int      `env:"CORS_MAX_AGE" envDefault:"86400"`
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Enabled   bool
	User      string        `env:"EMAIL_USER"`
	Password  string        `env:"EMAIL_PASS"`
	Recipient string        `env:"RECIPIENT_EMAIL"`
	SMTPHost  string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort  int           `env:"SMTP_PORT" envDefault:"587"`
	FromName  string        `env:"EMAIL_FROM_NAME" envDefault:"Portfolio"`
	OwnerName string        `env:"OWNER_NAME"`
	Timeout   time.Duration `env:"MAIL_TIMEOUT" envDefault:"20s"`

	EnabledFlag string `env:"EMAIL_ENABLED"`
}

// ContactConfig holds contact submission policy
type ContactConfig struct {
	PersistFailurePolicy string `env:"PERSIST_FAILURE_POLICY" envDefault:"abort"`
}

// Persistence failure policies.
const (
	PersistAbort    = "abort"
	PersistContinue = "continue"
)

// Record store drivers selected from DatabaseConfig.URI.
const (
	DriverNone     = ""
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultMongoDatabase = "portfolio"

// Load loads configuration from the environment, after reading a .env file
// when one is present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) error {
	cfg.Database.URI = strings.TrimSpace(cfg.Database.URI)
	cfg.Contact.PersistFailurePolicy = strings.ToLower(strings.TrimSpace(cfg.Contact.PersistFailurePolicy))

	if cfg.Email.Recipient == "" {
		cfg.Email.Recipient = cfg.Email.User
	}

	// Mail is on by default once credentials exist.
	cfg.Email.Enabled = cfg.Email.User != "" && cfg.Email.Password != ""
	if raw := strings.TrimSpace(cfg.Email.EnabledFlag); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("EMAIL_ENABLED must be a boolean: %w", err)
		}
		cfg.Email.Enabled = enabled
	}
	return nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.Database.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be greater than 0")
	}
	if cfg.Email.Timeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be greater than 0")
	}
	switch cfg.Contact.PersistFailurePolicy {
	case PersistAbort, PersistContinue:
	default:
		return fmt.Errorf("PERSIST_FAILURE_POLICY must be %q or %q", PersistAbort, PersistContinue)
	}
	if cfg.Email.Enabled {
		if cfg.Email.User == "" || cfg.Email.Password == "" {
			return fmt.Errorf("EMAIL_USER and EMAIL_PASS must be set when email is enabled")
		}
		if cfg.Email.SMTPHost == "" || cfg.Email.SMTPPort <= 0 {
			return fmt.Errorf("SMTP_HOST and SMTP_PORT must be set when email is enabled")
		}
	}
	if cfg.Database.Driver() == DriverNone && cfg.Database.URI != "" {
		return fmt.Errorf("MONGODB_URI has an unsupported scheme")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Enabled reports whether a record store is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URI != ""
}

// Driver returns the record store backend named by the URI scheme.
// A bare file path is treated as SQLite.
func (c *DatabaseConfig) Driver() string {
	uri := strings.ToLower(c.URI)
	switch {
	case uri == "":
		return DriverNone
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(uri, "sqlite:"), !strings.Contains(uri, "://"):
		return DriverSQLite
	}
	return DriverNone
}

// IsPostgres checks if the database URI is for PostgreSQL
func (c *DatabaseConfig) IsPostgres() bool {
	return c.Driver() == DriverPostgres
}

// SQLitePath extracts the SQLite database path from the URI.
// Accepts sqlite:///./file.db, sqlite://file.db and plain paths.
func (c *DatabaseConfig) SQLitePath() string {
	uri := c.URI
	for _, prefix := range []string{"sqlite:///", "sqlite://", "sqlite:"} {
		if strings.HasPrefix(uri, prefix) {
			return uri[len(prefix):]
		}
	}
	return uri
}

// MongoDatabase returns the database named in the URI path, or "portfolio".
func (c *DatabaseConfig) MongoDatabase() string {
	u, err := url.Parse(c.URI)
	if err != nil {
		return defaultMongoDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}
