package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/models"
)

// RedisProvider is the canonical name of the redis provider
const RedisProvider adapters.ProviderName = "redis"

// Recognized redis option keys
const (
	OptAddr        = "addr"
	OptPassword    = "password"
	OptDB          = "db"
	OptKeyPrefix   = "key_prefix"
	OptDialTimeout = "dial_timeout"
)

var redisOptions = []string{OptAddr, OptPassword, OptDB, OptKeyPrefix, OptDialTimeout}

// RedisAdapter stores each employee as a redis hash under {key_prefix}:{id}
type RedisAdapter struct {
	*adapters.Lifecycle
	logger *zap.Logger

	client *redis.Client
	prefix string
}

// NewRedis creates an uninitialized redis adapter
func NewRedis(logger *zap.Logger) *RedisAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisAdapter{
		Lifecycle: adapters.NewLifecycle(adapters.CategoryDatabase, RedisProvider),
		logger:    logger.With(zap.String("adapter", "database/redis")),
	}
}

// Initialize connects and pings the server
func (a *RedisAdapter) Initialize(ctx context.Context, opts adapters.Options) error {
	return a.Lifecycle.Initialize(opts, redisOptions, func() error {
		addr, err := opts.String(OptAddr, "")
		if err != nil {
			return err
		}
		if addr == "" {
			return errors.New("addr is required")
		}
		password, err := opts.String(OptPassword, "")
		if err != nil {
			return err
		}
		db, err := opts.Int(OptDB, 0)
		if err != nil {
			return err
		}
		prefix, err := opts.String(OptKeyPrefix, "employee")
		if err != nil {
			return err
		}
		dialTimeout, err := opts.Duration(OptDialTimeout, 5*time.Second)
		if err != nil {
			return err
		}

		client := redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    password,
			DB:          db,
			DialTimeout: dialTimeout,
			MaxRetries:  -1,
		})

		pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return adapters.NewInitializationError(adapters.CategoryDatabase, RedisProvider,
				fmt.Sprintf("cannot reach redis at %s", addr), err)
		}

		a.client = client
		a.prefix = prefix
		a.logger.Info("redis adapter initialized", zap.String("addr", addr), zap.Int("db", db))
		return nil
	})
}

// HandleData upserts one employee record
func (a *RedisAdapter) HandleData(ctx context.Context, payload adapters.Payload) (*adapters.Result, error) {
	var result *adapters.Result
	err := a.Use(func() error {
		employee, err := decodeEmployee(adapters.CategoryDatabase, RedisProvider, payload)
		if err != nil {
			return err
		}

		op, err := a.upsert(ctx, employee)
		if err != nil {
			return adapters.NewOperationError(adapters.CategoryDatabase, RedisProvider, "write_failed",
				"failed to store employee record", true, err)
		}

		result = processedResult(a, employee, op)
		return nil
	})
	return result, err
}

func (a *RedisAdapter) upsert(ctx context.Context, employee *models.Employee) (models.UpsertOperation, error) {
	key := a.prefix + ":" + employee.ID
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var created *redis.BoolCmd
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, key, "created_at", now)
		pipe.HSet(ctx, key,
			"id", employee.ID,
			"name", employee.Name,
			"department", employee.Department,
			"updated_at", now)
		return nil
	})
	if err != nil {
		return "", err
	}

	op := models.OperationUpdated
	if created.Val() {
		op = models.OperationInserted
	}
	a.logger.Debug("employee upserted", zap.String("key", key), zap.String("operation", string(op)))
	return op, nil
}

// Close closes the client
func (a *RedisAdapter) Close() error {
	return a.Lifecycle.Close(func() error {
		return a.client.Close()
	})
}
