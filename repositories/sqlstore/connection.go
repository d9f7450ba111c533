// Package sqlstore implements the repositories over database/sql. Both
// sqlite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported; the
// driver is picked from the connection string scheme.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // sqlite driver
)

// Driver names registered with database/sql
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const memoryDSN = ":memory:"

// ConnConfig configures a connection pool
type ConnConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	driver string
	logger *zap.Logger
}

// ParseConnectionString maps a URL-style connection string to a driver name and DSN.
// Accepted forms: sqlite:///relative.db, sqlite:////absolute.db, sqlite://:memory:,
// postgres://... and postgresql://...
func ParseConnectionString(s string) (driver, dsn string, err error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", "", errors.New("connection string is required")
	case strings.HasPrefix(s, "sqlite://"):
		rest := strings.TrimPrefix(s, "sqlite://")
		switch {
		case rest == memoryDSN || rest == "/"+memoryDSN:
			return DriverSQLite, memoryDSN, nil
		case strings.HasPrefix(rest, "/") && len(rest) > 1:
			return DriverSQLite, rest[1:], nil
		default:
			return "", "", fmt.Errorf("invalid sqlite connection string: %q", s)
		}
	case strings.HasPrefix(s, "postgres://"), strings.HasPrefix(s, "postgresql://"):
		return DriverPostgres, s, nil
	default:
		return "", "", fmt.Errorf("unsupported connection string scheme: %q", redact(s))
	}
}

// Open opens and verifies a connection pool
func Open(ctx context.Context, cfg ConnConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, dsn, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if dsn == memoryDSN {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("driver", driver),
		zap.String("connection", redact(cfg.ConnectionString)))

	return Wrap(db, driver, logger), nil
}

// Wrap adopts an existing pool
func Wrap(db *sql.DB, driver string, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: db, driver: driver, logger: logger}
}

// Driver returns the database/sql driver name
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		department VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_entries (
		id VARCHAR(36) PRIMARY KEY,
		employee_id VARCHAR(64) NOT NULL,
		entry_type VARCHAR(16) NOT NULL,
		timestamp TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leave_requests (
		id VARCHAR(36) PRIMARY KEY,
		employee_id VARCHAR(64) NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		reason TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		decided_by VARCHAR(64) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS performance_records (
		id VARCHAR(36) PRIMARY KEY,
		employee_id VARCHAR(64) NOT NULL,
		task_completion DOUBLE PRECISION NOT NULL,
		quality_score DOUBLE PRECISION NOT NULL,
		rating DOUBLE PRECISION NOT NULL,
		reviewer_id VARCHAR(64) NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_employee_id ON attendance_entries(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leave_employee_id ON leave_requests(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_performance_employee_id ON performance_records(employee_id)`,
}

// InitSchema creates the tables if they do not exist
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	db.logger.Debug("database schema initialized")
	return nil
}

// redact hides credentials in a URL-style connection string
func redact(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	return u.Redacted()
}
