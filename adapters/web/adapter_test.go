package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/middleware"
)

func newInitialized(t *testing.T, opts adapters.Options) *Adapter {
	t.Helper()
	a := New(zap.NewNop())
	require.NoError(t, a.Initialize(context.Background(), opts))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAdapter_EventRoute(t *testing.T) {
	ctx := context.Background()
	a := newInitialized(t, adapters.Options{OptDebug: true})

	payload := adapters.Payload{"employee_id": "EMP001", "status": "login"}
	result, err := a.HandleData(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Data["status_code"])
	assert.Equal(t, adapters.CategoryWeb, result.Category)
	assert.Equal(t, Provider, result.Provider)

	body, ok := result.Data["body"].(map[string]any)
	require.True(t, ok)
	data := body["data"].(map[string]any)
	assert.Equal(t, "EMP001", data["employee_id"])
	assert.Equal(t, "login", data["status"])

	// repeating the event leaves the same state
	again, err := a.HandleData(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, result.Data["status_code"], again.Data["status_code"])
	ev, ok := a.LastEvent("EMP001")
	require.True(t, ok)
	assert.Equal(t, "login", ev.Status)

	got, err := a.HandleData(ctx, adapters.Payload{"method": "GET", "path": "/events/EMP001"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.Data["status_code"])
}

func TestAdapter_ValidationIsClientError(t *testing.T) {
	a := newInitialized(t, nil)

	result, err := a.HandleData(context.Background(), adapters.Payload{"employee_id": "EMP001"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, result.Data["status_code"])
}

func TestAdapter_ServerErrorIsOperationError(t *testing.T) {
	a := New(zap.NewNop())
	a.Router().Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	require.NoError(t, a.Initialize(context.Background(), adapters.Options{OptBasePath: "/api/"}))
	defer a.Close()

	_, err := a.HandleData(context.Background(), adapters.Payload{"method": "GET", "path": "boom"})
	assert.ErrorIs(t, err, adapters.ErrAdapterOperation)
	assert.Equal(t, "server_error", adapters.ErrorCode(err))
}

func TestAdapter_BasePathAndEarlyRoutes(t *testing.T) {
	a := New(zap.NewNop())
	a.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, a.Initialize(context.Background(), adapters.Options{
		OptBasePath:       "hr",
		OptRequestTimeout: "5s",
		OptCORSOrigins:    []any{"http://localhost:3000"},
	}))
	defer a.Close()

	result, err := a.HandleData(context.Background(), adapters.Payload{"method": "GET", "path": "/ping"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, result.Data["status_code"])
	assert.Nil(t, result.Data["body"])

	handler, err := a.Handler()
	require.NoError(t, err)
	assert.NotNil(t, handler)
}

func TestAdapter_RouterAcceptsMiddleware(t *testing.T) {
	ctx := context.Background()

	var host, requestURI string
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, requestURI = r.Host, r.RequestURI
			next.ServeHTTP(w, r)
		})
	}

	a := New(zap.NewNop())
	require.NotPanics(t, func() { a.Router().Use(tag) })
	a.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, a.Initialize(ctx, adapters.Options{OptDebug: true}))
	defer a.Close()

	result, err := a.HandleData(ctx, adapters.Payload{"method": "GET", "path": "/ping?page=2"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, result.Data["status_code"])
	assert.Equal(t, "localhost", host)
	assert.Equal(t, "/ping?page=2", requestURI)

	// built-in events route is unaffected by host routes and middleware
	result, err = a.HandleData(ctx, adapters.Payload{"employee_id": "EMP001", "status": "login"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Data["status_code"])

	t.Run("after initialize", func(t *testing.T) {
		b := newInitialized(t, nil)
		require.NotPanics(t, func() { b.Router().Use(tag) })
		b.Router().Get("/late", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})

		result, err := b.HandleData(ctx, adapters.Payload{"method": "GET", "path": "/late"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, result.Data["status_code"])
		assert.Equal(t, "/late", requestURI)
	})
}

func TestAdapter_Auth(t *testing.T) {
	ctx := context.Background()
	a := newInitialized(t, adapters.Options{OptAuthSecret: "s3cret"})

	result, err := a.HandleData(ctx, adapters.Payload{"employee_id": "EMP001", "status": "login"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, result.Data["status_code"])

	issuer, err := middleware.NewHMACValidator("s3cret", "")
	require.NoError(t, err)
	token, err := issuer.IssueToken("user-1", "EMP001", nil, time.Minute)
	require.NoError(t, err)

	result, err = a.HandleData(ctx, adapters.Payload{
		"employee_id": "EMP001",
		"status":      "login",
		"headers":     map[string]any{"Authorization": "Bearer " + token},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Data["status_code"])
}

func TestAdapter_Lifecycle(t *testing.T) {
	ctx := context.Background()

	a := New(nil)
	_, err := a.HandleData(ctx, adapters.Payload{"employee_id": "EMP001", "status": "login"})
	assert.ErrorIs(t, err, adapters.ErrNotInitialized)

	_, err = a.Handler()
	assert.ErrorIs(t, err, adapters.ErrNotInitialized)

	err = a.Initialize(ctx, adapters.Options{"port": 5000})
	assert.ErrorIs(t, err, adapters.ErrInitialization)

	err = a.Initialize(ctx, adapters.Options{OptRequestTimeout: "-1s"})
	assert.ErrorIs(t, err, adapters.ErrInitialization)

	require.NoError(t, a.Initialize(ctx, adapters.Options{OptDebug: "true"}))
	assert.ErrorIs(t, a.Initialize(ctx, nil), adapters.ErrAlreadyInitialized)

	require.NoError(t, a.Close())
	_, err = a.HandleData(ctx, adapters.Payload{})
	assert.ErrorIs(t, err, adapters.ErrClosed)
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":       "/",
		"/":      "/",
		"api":    "/api",
		"/api/":  "/api",
		"/a/b/":  "/a/b",
		"  /x  ": "/x",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeBasePath(in), in)
	}
}
