package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/repositories/sqlstore"
)

// SQLProvider is the canonical name of the database/sql provider
const SQLProvider adapters.ProviderName = "sql"

// SQLAliases are additional names the sql provider is registered under
var SQLAliases = []adapters.ProviderName{"sqlalchemy"}

// Recognized sql option keys
const (
	OptConnectionString = "connection_string"
	OptMaxOpenConns     = "max_open_conns"
	OptMaxIdleConns     = "max_idle_conns"
	OptConnMaxLifetime  = "conn_max_lifetime"
)

var sqlOptions = []string{OptConnectionString, OptMaxOpenConns, OptMaxIdleConns, OptConnMaxLifetime}

// openStore is replaced in tests
var openStore = sqlstore.Open

// SQLAdapter stores employee records through database/sql
type SQLAdapter struct {
	*adapters.Lifecycle
	logger *zap.Logger

	db        *sqlstore.DB
	employees *sqlstore.EmployeeRepository
}

// NewSQL creates an uninitialized sql adapter
func NewSQL(logger *zap.Logger) *SQLAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLAdapter{
		Lifecycle: adapters.NewLifecycle(adapters.CategoryDatabase, SQLProvider),
		logger:    logger.With(zap.String("adapter", "database/sql")),
	}
}

// Initialize opens the pool, verifies it and creates the schema
func (a *SQLAdapter) Initialize(ctx context.Context, opts adapters.Options) error {
	return a.Lifecycle.Initialize(opts, sqlOptions, func() error {
		cfg := sqlstore.ConnConfig{}
		var err error
		if cfg.ConnectionString, err = opts.String(OptConnectionString, ""); err != nil {
			return err
		}
		if cfg.ConnectionString == "" {
			return errors.New("connection_string is required")
		}
		if cfg.MaxOpenConns, err = opts.Int(OptMaxOpenConns, 10); err != nil {
			return err
		}
		if cfg.MaxIdleConns, err = opts.Int(OptMaxIdleConns, 5); err != nil {
			return err
		}
		if cfg.ConnMaxLifetime, err = opts.Duration(OptConnMaxLifetime, 5*time.Minute); err != nil {
			return err
		}

		db, err := openStore(ctx, cfg, a.logger)
		if err != nil {
			return adapters.NewInitializationError(adapters.CategoryDatabase, SQLProvider, "cannot connect to database", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return adapters.NewInitializationError(adapters.CategoryDatabase, SQLProvider, "cannot prepare schema", err)
		}

		a.db = db
		a.employees = sqlstore.NewEmployeeRepository(db, a.logger)
		a.logger.Info("sql adapter initialized", zap.String("driver", db.Driver()))
		return nil
	})
}

// DB returns the underlying pool so the host can share it
func (a *SQLAdapter) DB() (*sqlstore.DB, error) {
	var db *sqlstore.DB
	err := a.Use(func() error {
		db = a.db
		return nil
	})
	return db, err
}

// HandleData upserts one employee record
func (a *SQLAdapter) HandleData(ctx context.Context, payload adapters.Payload) (*adapters.Result, error) {
	var result *adapters.Result
	err := a.Use(func() error {
		employee, err := decodeEmployee(adapters.CategoryDatabase, SQLProvider, payload)
		if err != nil {
			return err
		}

		op, err := a.employees.Upsert(ctx, employee)
		if err != nil {
			return adapters.NewOperationError(adapters.CategoryDatabase, SQLProvider, "write_failed",
				"failed to store employee record", isTransient(ctx, err), err)
		}

		result = processedResult(a, employee, op)
		return nil
	})
	return result, err
}

// Close closes the pool
func (a *SQLAdapter) Close() error {
	return a.Lifecycle.Close(func() error {
		return a.db.Close()
	})
}

// isTransient flags context expiry as retryable
func isTransient(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil
}
