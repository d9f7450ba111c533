package builtin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/adapters/web"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 5, r.Count())
	assert.Equal(t, adapters.AllCategories, r.Categories())
	assert.Equal(t, []adapters.ProviderName{"redis", "sql"}, r.Providers(adapters.CategoryDatabase))

	for _, pair := range []struct {
		category adapters.Category
		provider adapters.ProviderName
	}{
		{adapters.CategoryWeb, "flask"},
		{adapters.CategoryDatabase, "sqlalchemy"},
		{adapters.CategoryAsync, "aiohttp"},
		{adapters.CategoryML, "sklearn"},
	} {
		assert.True(t, r.Supports(pair.category, pair.provider), "%s/%s", pair.category, pair.provider)
	}

	// registering twice collides
	assert.ErrorIs(t, Register(r, nil), adapters.ErrProviderAlreadyRegistered)
}

func TestScenarios(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	t.Run("web event", func(t *testing.T) {
		a, err := r.Create(adapters.CategoryWeb, "flask")
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.Initialize(ctx, adapters.Options{"debug": true}))
		result, err := adapters.Invoke(ctx, a, adapters.Payload{"employee_id": "EMP001", "status": "login"})
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, web.Provider, result.Provider)
	})

	t.Run("database record", func(t *testing.T) {
		a, err := r.CreateSync(adapters.CategoryDatabase, "sqlalchemy")
		require.NoError(t, err)
		defer a.Close()

		conn := "sqlite:///" + filepath.Join(t.TempDir(), "employee.db")
		require.NoError(t, a.Initialize(ctx, adapters.Options{"connection_string": conn}))

		result, err := a.HandleData(ctx, adapters.Payload{"id": "EMP001", "name": "John Doe", "department": "IT"})
		require.NoError(t, err)
		assert.Equal(t, "processed", result.Data["status"])
	})

	t.Run("async task", func(t *testing.T) {
		a, err := r.CreateAsync(adapters.CategoryAsync, "aiohttp")
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.Initialize(ctx, nil))
		future, err := a.HandleData(ctx, adapters.Payload{
			"task":         "process_payroll",
			"employee_ids": []string{"EMP001", "EMP002"},
		})
		require.NoError(t, err)

		awaitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		result, err := future.Await(awaitCtx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Data["processed"])
	})

	t.Run("ml prediction", func(t *testing.T) {
		a, err := r.Create(adapters.CategoryML, "sklearn")
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.Initialize(ctx, nil))
		result, err := adapters.Invoke(ctx, a, adapters.Payload{
			"attendance_rate": 1.0,
			"tasks_completed": 10,
			"quality_score":   4,
		})
		require.NoError(t, err)
		assert.Contains(t, result.Data, "prediction")
	})

	t.Run("handle before initialize", func(t *testing.T) {
		for _, category := range adapters.AllCategories {
			for _, provider := range r.Providers(category) {
				a, err := r.Create(category, provider)
				require.NoError(t, err)

				_, err = adapters.Invoke(ctx, a, adapters.Payload{})
				assert.ErrorIs(t, err, adapters.ErrNotInitialized, "%s/%s", category, provider)
				assert.NoError(t, a.Close())
			}
		}
	})

	t.Run("unsupported pairs", func(t *testing.T) {
		a, err := r.CreateFromStrings("blockchain", "ethereum")
		assert.Nil(t, a)
		assert.ErrorIs(t, err, adapters.ErrUnsupportedCategory)

		a, err = r.CreateFromStrings("web", "django")
		assert.Nil(t, a)
		assert.ErrorIs(t, err, adapters.ErrUnsupportedProvider)
	})
}
