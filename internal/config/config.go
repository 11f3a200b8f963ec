package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Development-only fallbacks. Load refuses to use them outside APP_ENV=development.
const (
	devAdminPassword = "change-me-dev"
	devJWTSecret     = "dev-secret-do-not-deploy"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Tracing  TracingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string   `env:"APP_NAME" envDefault:"registration-service"`
	Env                   string   `env:"APP_ENV" envDefault:"development"`
	Host                  string   `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string   `env:"APP_PORT" envDefault:"8080"`
	Version               string   `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	ExportTimeoutSeconds  int      `env:"HTTP_EXPORT_TIMEOUT_SECONDS" envDefault:"300"`
	Timezone              string   `env:"APP_TIMEZONE"`
	CORSAllowOrigins      []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// StorageConfig selects the registration store.
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// SQLiteConfig holds the embedded store location.
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"registrations.db"`
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr          string `env:"REDIS_ADDR"`
	Password      string `env:"REDIS_PASSWORD"`
	DB            int    `env:"REDIS_DB" envDefault:"0"`
	EventsChannel string `env:"REDIS_EVENTS_CHANNEL" envDefault:"registrations.events"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`
}

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	JWTSecret         string `env:"AUTH_JWT_SECRET"`
	TokenTTLHours     int    `env:"AUTH_TOKEN_TTL_HOURS" envDefault:"24"`
	BcryptCost        int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	// UsingDevDefaults is set when development fallbacks were applied.
	UsingDevDefaults bool
}

// TracingConfig configures OTLP trace export. An empty endpoint disables export.
type TracingConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if c.Storage.Driver == "" {
		if c.Postgres.DSN != "" {
			c.Storage.Driver = DriverPostgres
		} else {
			c.Storage.Driver = DriverSQLite
		}
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.App.Timezone != "" {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
		}
	}

	missingCredential := c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == ""
	if c.IsDevelopment() {
		if c.Auth.JWTSecret == "" {
			c.Auth.JWTSecret = devJWTSecret
			c.Auth.UsingDevDefaults = true
		}
		if missingCredential {
			c.Auth.AdminPassword = devAdminPassword
			c.Auth.UsingDevDefaults = true
		}
		return nil
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required outside development")
	}
	if missingCredential {
		return errors.New("ADMIN_PASSWORD_HASH is required outside development")
	}
	return nil
}

// IsDevelopment reports whether development fallbacks are allowed.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
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

// ExportTimeout bounds a streamed export, which outlives the request handler.
func (a AppConfig) ExportTimeout() time.Duration {
	if a.ExportTimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.ExportTimeoutSeconds) * time.Second
}

// Location returns the zone used for day and month boundaries.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TokenTTL returns the admin token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}
