package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/employee-management/adapters"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsDevelopment())
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "sqlite:///employee.db", cfg.Database.ConnectionString)
				assert.Equal(t, 10, cfg.Database.MaxOpenConns)
				assert.Equal(t, StorageMemory, cfg.Storage.Driver)
				assert.Equal(t, 4, cfg.Async.Workers)
				assert.Equal(t, 30*time.Second, cfg.Async.Timeout)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
			},
		},
		{
			name: "custom timeouts and pool settings",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DB_MAX_OPEN_CONNS":    "50",
				"DB_MAX_IDLE_CONNS":    "10",
				"ASYNC_TIMEOUT":        "2m",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.Database.MaxIdleConns)
				assert.Equal(t, 2*time.Minute, cfg.Async.Timeout)
			},
		},
		{
			name: "web settings",
			envVars: map[string]string{
				"WEB_DEBUG":        "true",
				"WEB_BASE_PATH":    "/hr",
				"WEB_CORS_ORIGINS": "http://a.example, ,http://b.example",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Web.Debug)
				assert.Equal(t, "/hr", cfg.Web.BasePath)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Web.CORSOrigins)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
				assert.Equal(t, "0.0.0.0:9443", cfg.Server.Address())
			},
		},
		{
			name: "invalid numbers fall back to defaults",
			envVars: map[string]string{
				"ASYNC_WORKERS": "lots",
				"WEB_DEBUG":     "maybe",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Async.Workers)
				assert.False(t, cfg.Web.Debug)
			},
		},
		{
			name: "sql storage",
			envVars: map[string]string{
				"STORAGE_DRIVER": "SQL",
				"DATABASE_URL":   "postgres://hr:secret@db:5432/hr",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StorageSQL, cfg.Storage.Driver)
				assert.Equal(t, "postgres://hr:xxxxx@db:5432/hr", cfg.Database.LogString())
			},
		},
		{
			name: "provider selection",
			envVars: map[string]string{
				"WEB_PROVIDER":      "flask",
				"DATABASE_PROVIDER": "redis",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, adapters.ProviderName("flask"), cfg.Providers.Provider(adapters.CategoryWeb))
				assert.Equal(t, adapters.ProviderName("redis"), cfg.Providers.Provider(adapters.CategoryDatabase))
				assert.Equal(t, adapters.ProviderName("http"), cfg.Providers.Provider(adapters.CategoryAsync))
				assert.Equal(t, adapters.ProviderName("linear"), cfg.Providers.Provider(adapters.CategoryML))
				assert.Equal(t, adapters.ProviderName(""), cfg.Providers.Provider(adapters.Category("gui")))
			},
		},
		{
			name:    "unsupported storage driver",
			envVars: map[string]string{"STORAGE_DRIVER": "mongo"},
			wantErr: true,
		},
		{
			name:    "zero async workers",
			envVars: map[string]string{"ASYNC_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "production without auth secret",
			envVars: map[string]string{"ENVIRONMENT": "production"},
			wantErr: true,
		},
		{
			name: "production with auth secret",
			envVars: map[string]string{
				"ENVIRONMENT":     "production",
				"WEB_AUTH_SECRET": "s3cret",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestAdapterDefaults(t *testing.T) {
	cfg := &Config{
		Web:      WebConfig{Debug: true, AuthSecret: "k"},
		Database: DatabaseConfig{ConnectionString: "sqlite://:memory:", MaxOpenConns: 3, MaxIdleConns: 1, ConnMaxLifetime: time.Minute},
		Redis:    RedisConfig{Addr: "cache:6379", DB: 2},
		Async:    AsyncConfig{Workers: 2, Timeout: time.Second, Endpoint: "http://jobs"},
	}

	web := cfg.AdapterDefaults(adapters.CategoryWeb, "flask")
	assert.Equal(t, adapters.Options{"debug": true, "auth_secret": "k"}, web)

	sql := cfg.AdapterDefaults(adapters.CategoryDatabase, "sqlalchemy")
	assert.Equal(t, "sqlite://:memory:", sql["connection_string"])
	assert.Equal(t, 3, sql["max_open_conns"])
	assert.NotContains(t, sql, "addr")

	redis := cfg.AdapterDefaults(adapters.CategoryDatabase, "redis")
	assert.Equal(t, adapters.Options{"addr": "cache:6379", "db": 2}, redis)

	async := cfg.AdapterDefaults(adapters.CategoryAsync, "aiohttp")
	assert.Equal(t, "http://jobs", async["endpoint"])
	assert.Equal(t, 2, async["workers"])

	assert.Empty(t, cfg.AdapterDefaults(adapters.CategoryML, "sklearn"))
}
