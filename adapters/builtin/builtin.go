// Package builtin wires every bundled provider into a registry.
package builtin

import (
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/adapters/async"
	"github.com/upb/employee-management/adapters/database"
	"github.com/upb/employee-management/adapters/ml"
	"github.com/upb/employee-management/adapters/web"
)

// NewRegistry returns a registry with all bundled providers registered
func NewRegistry(logger *zap.Logger) (*adapters.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := adapters.NewRegistry(logger)
	if err := Register(r, logger); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds the bundled providers to an existing registry
func Register(r *adapters.Registry, logger *zap.Logger) error {
	entries := []struct {
		category    adapters.Category
		provider    adapters.ProviderName
		constructor adapters.Constructor
		aliases     []adapters.ProviderName
	}{
		{adapters.CategoryWeb, web.Provider, func() adapters.Adapter { return web.New(logger) }, web.Aliases},
		{adapters.CategoryDatabase, database.SQLProvider, func() adapters.Adapter { return database.NewSQL(logger) }, database.SQLAliases},
		{adapters.CategoryDatabase, database.RedisProvider, func() adapters.Adapter { return database.NewRedis(logger) }, nil},
		{adapters.CategoryAsync, async.Provider, func() adapters.Adapter { return async.New(logger) }, async.Aliases},
		{adapters.CategoryML, ml.Provider, func() adapters.Adapter { return ml.New(logger) }, ml.Aliases},
	}

	for _, e := range entries {
		if err := r.Register(e.category, e.provider, e.constructor, e.aliases...); err != nil {
			return err
		}
	}
	return nil
}
