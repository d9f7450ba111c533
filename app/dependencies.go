package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/adapters/async"
	"github.com/upb/employee-management/adapters/builtin"
	"github.com/upb/employee-management/adapters/database"
	"github.com/upb/employee-management/adapters/ml"
	"github.com/upb/employee-management/adapters/web"
	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/repositories"
	"github.com/upb/employee-management/repositories/memory"
	"github.com/upb/employee-management/repositories/sqlstore"
	"github.com/upb/employee-management/services/attendance"
	"github.com/upb/employee-management/services/leave"
	"github.com/upb/employee-management/services/performance"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Settings *config.Manager
	Logger   *zap.Logger
	Registry *adapters.Registry

	// Adapters, one per category
	Web      *web.Adapter
	Database adapters.SyncAdapter
	Async    *async.Adapter
	ML       *ml.Adapter

	// Storage
	Repos   *repositories.Repositories
	storeDB *sqlstore.DB // owned pool when storage does not share the sql adapter

	// Services
	Attendance  *attendance.Tracker
	Leave       *leave.Service
	Performance *performance.Tracker

	// initialized adapters in creation order, closed in reverse
	opened []adapters.Adapter
}

// NewDependencies creates and wires up all application dependencies. On
// failure every adapter initialized so far is closed again.
func NewDependencies(ctx context.Context, settings *config.Manager, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{
		Config:   settings.Env(),
		Settings: settings,
		Logger:   logger,
	}

	if err := deps.init(ctx); err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) init(ctx context.Context) error {
	registry, err := builtin.NewRegistry(d.Logger)
	if err != nil {
		return fmt.Errorf("failed to build adapter registry: %w", err)
	}
	d.Registry = registry

	// Initialize adapters
	if err := d.initAdapters(ctx); err != nil {
		return err
	}

	// Initialize repositories
	if err := d.initRepositories(ctx); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Initialize services
	d.initServices()
	return nil
}

// initAdapters creates and initializes one adapter per category with the
// merged file and environment options
func (d *Dependencies) initAdapters(ctx context.Context) error {
	for _, category := range adapters.AllCategories {
		a, err := d.OpenAdapter(ctx, category, d.Config.Providers.Provider(category))
		if err != nil {
			return err
		}

		var ok bool
		switch category {
		case adapters.CategoryWeb:
			d.Web, ok = a.(*web.Adapter)
		case adapters.CategoryDatabase:
			d.Database, ok = a.(adapters.SyncAdapter)
		case adapters.CategoryAsync:
			d.Async, ok = a.(*async.Adapter)
		case adapters.CategoryML:
			d.ML, ok = a.(*ml.Adapter)
		}
		if !ok {
			return fmt.Errorf("provider %s/%s is not usable here", category, a.Provider())
		}
	}
	return nil
}

// OpenAdapter creates, initializes and tracks an adapter for the pair. The
// adapter is closed by Close.
func (d *Dependencies) OpenAdapter(ctx context.Context, category adapters.Category, provider adapters.ProviderName) (adapters.Adapter, error) {
	a, err := d.Registry.Create(category, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", category, err)
	}

	opts := d.Settings.AdapterOptions(category, a.Provider())
	if err := a.Initialize(ctx, opts); err != nil {
		return nil, fmt.Errorf("failed to initialize %s adapter: %w", category, err)
	}
	d.opened = append(d.opened, a)

	d.Logger.Info("adapter ready",
		zap.String("category", string(category)),
		zap.String("provider", string(a.Provider())))
	return a, nil
}

// initRepositories selects the storage backing the employee services
func (d *Dependencies) initRepositories(ctx context.Context) error {
	if d.Config.Storage.Driver != config.StorageSQL {
		d.Repos = memory.NewStore().Repositories()
		d.Logger.Info("repositories initialized", zap.String("storage", config.StorageMemory))
		return nil
	}

	// Share the sql adapter pool when it is the configured database provider
	var db *sqlstore.DB
	if sqlAdapter, ok := d.Database.(*database.SQLAdapter); ok {
		shared, err := sqlAdapter.DB()
		if err != nil {
			return err
		}
		db = shared
	} else {
		owned, err := sqlstore.Open(ctx, sqlstore.ConnConfig{
			ConnectionString: d.Config.Database.ConnectionString,
			MaxOpenConns:     d.Config.Database.MaxOpenConns,
			MaxIdleConns:     d.Config.Database.MaxIdleConns,
			ConnMaxLifetime:  d.Config.Database.ConnMaxLifetime,
		}, d.Logger)
		if err != nil {
			return err
		}
		d.storeDB = owned
		if err := owned.InitSchema(ctx); err != nil {
			return err
		}
		db = owned
	}

	d.Repos = sqlstore.NewRepositories(db, d.Logger)
	d.Logger.Info("repositories initialized",
		zap.String("storage", config.StorageSQL),
		zap.String("connection", d.Config.Database.LogString()))
	return nil
}

func (d *Dependencies) initServices() {
	d.Attendance = attendance.NewTracker(d.Repos, d.Settings.Attendance(), d.Logger)
	d.Leave = leave.NewService(d.Repos, d.Settings.Leave(), d.Logger)
	d.Performance = performance.NewTracker(d.Repos, d.Settings.Performance(), d.Logger)
	d.Logger.Info("services initialized")
}

// HealthChecks returns the readiness checks of the storage in use
func (d *Dependencies) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	var db *sqlstore.DB
	if d.storeDB != nil {
		db = d.storeDB
	} else if sqlAdapter, ok := d.Database.(*database.SQLAdapter); ok {
		db, _ = sqlAdapter.DB()
	}
	if db != nil {
		checks["database"] = db.HealthCheck
	}
	if d.Async != nil {
		checks["async"] = func(ctx context.Context) error {
			if d.Async.State() != adapters.StateInitialized {
				return fmt.Errorf("async adapter is %s", d.Async.State())
			}
			return nil
		}
	}
	return checks
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.storeDB != nil {
		if err := d.storeDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage database: %w", err))
		}
		d.storeDB = nil
	}

	for i := len(d.opened) - 1; i >= 0; i-- {
		a := d.opened[i]
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s adapter: %w", a.Category(), err))
		} else {
			d.Logger.Debug("adapter closed", zap.String("category", string(a.Category())))
		}
	}
	d.opened = nil

	// Sync logger
	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
