package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/employee-management/app"
	"github.com/upb/employee-management/config"
)

func setTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "sqlite:///"+filepath.Join(dir, "employee.db"))
	t.Setenv("ASYNC_ENDPOINT", "")
	t.Setenv("WEB_AUTH_SECRET", "")
	return dir
}

func TestRunCommand(t *testing.T) {
	setTestEnv(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Uninitialized adapter:")
	assert.Contains(t, got, "Web Response: web/chi:")
	assert.Contains(t, got, `"message":"Test route"`)
	assert.Contains(t, got, "Database Operation: database/sql:")
	assert.Contains(t, got, `"status":"processed"`)
	assert.Contains(t, got, "Async Operation Result: async/http:")
	assert.Contains(t, got, "ML Prediction: ml/linear:")
	assert.Contains(t, got, "Attendance logged successfully")
	assert.Contains(t, got, "Leave requested successfully")
	assert.Contains(t, got, "Performance recorded successfully")
}

func TestRunCommand_ServiceErrorsAreReported(t *testing.T) {
	dir := setTestEnv(t)

	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("leave:\n  max_consecutive_days: 1\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--config", settings})
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Leave request error:")
	assert.Contains(t, got, "exceeds the maximum of 1 consecutive days")
	// the remaining steps still run
	assert.Contains(t, got, "Performance recorded successfully")
}

func TestRunCommand_SystemError(t *testing.T) {
	setTestEnv(t)
	t.Setenv("DATABASE_URL", "mysql://unsupported")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database adapter")
}

func TestRunCommand_MissingSettingsFile(t *testing.T) {
	setTestEnv(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "missing.json")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
		Database: config.DatabaseConfig{
			ConnectionString: "sqlite:///" + filepath.Join(dir, "serve.db"),
			MaxOpenConns:     1,
			MaxIdleConns:     1,
		},
		Async:     config.AsyncConfig{Workers: 1, Timeout: time.Second},
		Storage:   config.StorageConfig{Driver: config.StorageMemory},
		Providers: config.ProvidersConfig{Web: "chi", Database: "sql", Async: "http", ML: "linear"},
	}
	manager, err := config.NewManager(cfg, "")
	require.NoError(t, err)

	deps, err := app.NewDependencies(context.Background(), manager, zap.NewNop())
	require.NoError(t, err)
	defer deps.Close(context.Background())

	handler, err := deps.Web.Handler()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, serve(ctx, deps, handler))
}
