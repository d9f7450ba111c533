// Package web provides the web category adapter: an in-process chi router with
// the standard middleware stack, optional CORS and optional bearer-token auth.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/middleware"
)

// Provider is the canonical provider name
const Provider adapters.ProviderName = "chi"

// Aliases are additional names the provider is registered under
var Aliases = []adapters.ProviderName{"flask"}

// Recognized option keys
const (
	OptDebug          = "debug"
	OptBasePath       = "base_path"
	OptCORSOrigins    = "cors_origins"
	OptAuthSecret     = "auth_secret"
	OptRequestTimeout = "request_timeout"
)

var knownOptions = []string{OptDebug, OptBasePath, OptCORSOrigins, OptAuthSecret, OptRequestTimeout}

// Payload keys that steer the in-process request instead of being sent as body
const (
	payloadMethod  = "method"
	payloadPath    = "path"
	payloadHeaders = "headers"
)

const defaultRequestTimeout = 60 * time.Second

// Adapter is the chi web adapter
type Adapter struct {
	*adapters.Lifecycle
	logger *zap.Logger

	router chi.Router

	// set during Initialize
	handler  http.Handler
	basePath string
	debug    bool
	auth     *middleware.AuthMiddleware

	eventsMu sync.RWMutex
	events   map[string]Event
}

// Event is the last status reported for an employee through the events route
type Event struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Status     string    `json:"status" validate:"required"`
	ReceivedAt time.Time `json:"received_at"`
}

// New creates an uninitialized web adapter
func New(logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		Lifecycle: adapters.NewLifecycle(adapters.CategoryWeb, Provider),
		logger:    logger.With(zap.String("adapter", "web/chi")),
		router:    chi.NewRouter(),
		events:    make(map[string]Event),
	}
	return a
}

// Router returns the application router. Middleware and routes may be added
// before or after Initialize; paths are relative to the configured base path.
// The built-in events routes live outside it, so Use stays available until the
// host registers its first route.
func (a *Adapter) Router() chi.Router {
	return a.router
}

// Initialize builds the middleware stack around the application router
func (a *Adapter) Initialize(ctx context.Context, opts adapters.Options) error {
	return a.Lifecycle.Initialize(opts, knownOptions, func() error {
		debug, err := opts.Bool(OptDebug, false)
		if err != nil {
			return err
		}
		basePath, err := opts.String(OptBasePath, "/")
		if err != nil {
			return err
		}
		origins, err := opts.Strings(OptCORSOrigins, nil)
		if err != nil {
			return err
		}
		secret, err := opts.String(OptAuthSecret, "")
		if err != nil {
			return err
		}
		timeout, err := opts.Duration(OptRequestTimeout, defaultRequestTimeout)
		if err != nil {
			return err
		}
		if timeout <= 0 {
			return fmt.Errorf("%s must be positive", OptRequestTimeout)
		}

		basePath = normalizeBasePath(basePath)

		if secret != "" {
			validator, err := middleware.NewHMACValidator(secret, "")
			if err != nil {
				return err
			}
			a.auth = middleware.NewAuthMiddleware(validator, a.logger)
		}

		root := chi.NewRouter()
		root.Use(chimiddleware.RequestID)
		root.Use(chimiddleware.RealIP)
		if debug {
			root.Use(chimiddleware.Logger)
		}
		root.Use(chimiddleware.Recoverer)
		root.Use(chimiddleware.Timeout(timeout))
		if len(origins) > 0 {
			root.Use(cors.Handler(cors.Options{
				AllowedOrigins:   origins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		base := chi.NewRouter()
		base.With(a.Authenticated).Post("/events", a.handlePostEvent)
		base.With(a.Authenticated).Get("/events/{employeeID}", a.handleGetEvent)
		base.Mount("/", a.router)
		root.Mount(basePath, base)

		a.handler = root
		a.basePath = basePath
		a.debug = debug

		a.logger.Info("web adapter initialized",
			zap.String("base_path", basePath),
			zap.Bool("debug", debug),
			zap.Bool("auth", a.auth != nil),
			zap.Int("cors_origins", len(origins)))
		return nil
	})
}

// Handler returns the composed HTTP handler for serving on a real listener
func (a *Adapter) Handler() (http.Handler, error) {
	var h http.Handler
	err := a.Use(func() error {
		h = a.handler
		return nil
	})
	return h, err
}

// Authenticated wraps next with bearer-token auth when an auth secret is configured.
// The decision is made per request so it can wrap routes registered before Initialize.
func (a *Adapter) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		a.auth.RequireAuth(next).ServeHTTP(w, r)
	})
}

// RequireRole wraps next with a role check when an auth secret is configured
func (a *Adapter) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.auth == nil {
				next.ServeHTTP(w, r)
				return
			}
			a.auth.RequireRole(role)(next).ServeHTTP(w, r)
		})
	}
}

// HandleData serves the payload as an in-process request and returns the
// response status and decoded body. Without method/path the payload is posted
// to the events route.
func (a *Adapter) HandleData(ctx context.Context, payload adapters.Payload) (*adapters.Result, error) {
	var result *adapters.Result
	err := a.Use(func() error {
		req, err := a.buildRequest(ctx, payload)
		if err != nil {
			return adapters.NewOperationError(adapters.CategoryWeb, Provider, "invalid_payload", "invalid request payload", false, err)
		}

		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)

		body := decodeBody(rec.Body.Bytes())
		if rec.Code >= http.StatusInternalServerError {
			return adapters.NewOperationError(adapters.CategoryWeb, Provider, "server_error",
				fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, rec.Code),
				rec.Code == http.StatusServiceUnavailable, nil)
		}

		if a.debug {
			a.logger.Debug("request handled",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", rec.Code))
		}

		result = adapters.NewResult(a, map[string]any{
			"status_code": rec.Code,
			"body":        body,
		})
		return nil
	})
	return result, err
}

// Close drops the composed handler
func (a *Adapter) Close() error {
	return a.Lifecycle.Close(func() error {
		a.handler = nil
		a.logger.Info("web adapter closed")
		return nil
	})
}

func (a *Adapter) buildRequest(ctx context.Context, payload adapters.Payload) (*http.Request, error) {
	method := http.MethodPost
	path := a.join("events")
	headers := map[string]string{}
	body := make(map[string]any, len(payload))

	for k, v := range payload {
		switch k {
		case payloadMethod:
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%s must be a non-empty string", payloadMethod)
			}
			method = strings.ToUpper(s)
		case payloadPath:
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%s must be a non-empty string", payloadPath)
			}
			path = a.join(strings.TrimPrefix(s, "/"))
		case payloadHeaders:
			m, ok := v.(map[string]any)
			if !ok {
				if typed, ok := v.(map[string]string); ok {
					for hk, hv := range typed {
						headers[hk] = hv
					}
					continue
				}
				return nil, fmt.Errorf("%s must be a map of strings", payloadHeaders)
			}
			for hk, hv := range m {
				headers[hk] = fmt.Sprint(hv)
			}
		default:
			body[k] = v
		}
	}

	var reader *bytes.Reader
	if method == http.MethodGet || method == http.MethodHead || len(body) == 0 {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	// fill in what a server would, so access logs show a full request line
	req.Host = "localhost"
	req.RequestURI = req.URL.RequestURI()
	req.RemoteAddr = "127.0.0.1:0"
	return req, nil
}

func (a *Adapter) join(rel string) string {
	if a.basePath == "/" {
		return "/" + rel
	}
	return a.basePath + "/" + rel
}

// normalizeBasePath returns "/" or a path with a leading and no trailing slash
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
