package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/upb/employee-management/adapters"
)

// Storage drivers for the employee services
const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Observability ObservabilityConfig
	Web           WebConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Async         AsyncConfig
	Storage       StorageConfig
	Providers     ProvidersConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// WebConfig holds the web adapter defaults
type WebConfig struct {
	Debug       bool
	BasePath    string
	AuthSecret  string
	CORSOrigins []string
}

// DatabaseConfig holds the SQL database adapter defaults
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// RedisConfig holds the redis database adapter defaults
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AsyncConfig holds the async adapter defaults
type AsyncConfig struct {
	Endpoint string
	Workers  int
	Timeout  time.Duration
}

// StorageConfig selects where attendance, leave and performance data live
type StorageConfig struct {
	Driver string // memory or sql
}

// ProvidersConfig names the provider created for each adapter category
type ProvidersConfig struct {
	Web      string
	Database string
	Async    string
	ML       string
}

// Provider returns the configured provider for a category
func (p ProvidersConfig) Provider(category adapters.Category) adapters.ProviderName {
	switch category {
	case adapters.CategoryWeb:
		return adapters.ProviderName(p.Web)
	case adapters.CategoryDatabase:
		return adapters.ProviderName(p.Database)
	case adapters.CategoryAsync:
		return adapters.ProviderName(p.Async)
	case adapters.CategoryML:
		return adapters.ProviderName(p.ML)
	default:
		return ""
	}
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
		Web: WebConfig{
			Debug:       getEnvAsBool("WEB_DEBUG", false),
			BasePath:    getEnv("WEB_BASE_PATH", ""),
			AuthSecret:  getEnv("WEB_AUTH_SECRET", ""),
			CORSOrigins: getEnvAsList("WEB_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			ConnectionString: getEnv("DATABASE_URL", "sqlite:///employee.db"),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Async: AsyncConfig{
			Endpoint: getEnv("ASYNC_ENDPOINT", ""),
			Workers:  getEnvAsInt("ASYNC_WORKERS", 4),
			Timeout:  getEnvAsDuration("ASYNC_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		},
		Providers: ProvidersConfig{
			Web:      getEnv("WEB_PROVIDER", "chi"),
			Database: getEnv("DATABASE_PROVIDER", "sql"),
			Async:    getEnv("ASYNC_PROVIDER", "http"),
			ML:       getEnv("ML_PROVIDER", "linear"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQL:
		if c.Database.ConnectionString == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=sql")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q: want memory or sql", c.Storage.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot be negative")
	}
	if c.Async.Workers <= 0 {
		return fmt.Errorf("ASYNC_WORKERS must be positive")
	}

	// Bearer auth is mandatory in production
	if c.IsProduction() && c.Web.AuthSecret == "" {
		return fmt.Errorf("WEB_AUTH_SECRET is required in production")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// AdapterDefaults returns the environment derived initialization options for
// a provider. Keys a provider does not recognize are never included.
func (c *Config) AdapterDefaults(category adapters.Category, provider adapters.ProviderName) adapters.Options {
	opts := adapters.Options{}
	switch category {
	case adapters.CategoryWeb:
		opts["debug"] = c.Web.Debug
		if c.Web.BasePath != "" {
			opts["base_path"] = c.Web.BasePath
		}
		if c.Web.AuthSecret != "" {
			opts["auth_secret"] = c.Web.AuthSecret
		}
		if len(c.Web.CORSOrigins) > 0 {
			opts["cors_origins"] = c.Web.CORSOrigins
		}
	case adapters.CategoryDatabase:
		if strings.EqualFold(string(provider), "redis") {
			opts["addr"] = c.Redis.Addr
			opts["db"] = c.Redis.DB
			if c.Redis.Password != "" {
				opts["password"] = c.Redis.Password
			}
			break
		}
		opts["connection_string"] = c.Database.ConnectionString
		opts["max_open_conns"] = c.Database.MaxOpenConns
		opts["max_idle_conns"] = c.Database.MaxIdleConns
		opts["conn_max_lifetime"] = c.Database.ConnMaxLifetime
	case adapters.CategoryAsync:
		opts["workers"] = c.Async.Workers
		opts["timeout"] = c.Async.Timeout
		if c.Async.Endpoint != "" {
			opts["endpoint"] = c.Async.Endpoint
		}
	}
	return opts
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil {
		return "<unparseable DATABASE_URL>"
	}
	return u.Redacted()
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Environment lookups. Unset or unparseable values fall back to the default.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envAs[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if v, err := parse(raw); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	return envAs(key, defaultValue, strconv.Atoi)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	return envAs(key, defaultValue, strconv.ParseBool)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	return envAs(key, defaultValue, time.ParseDuration)
}

// getPort prefers PORT (set by most PaaS runtimes) over SERVER_PORT
func getPort() int {
	return getEnvAsInt("PORT", getEnvAsInt("SERVER_PORT", 8080))
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
