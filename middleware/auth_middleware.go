package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/employee-management/utils"
	"go.uber.org/zap"
)

// TokenValidator turns a raw bearer token into employee claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// AuthMiddleware authenticates API callers and enforces roles
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{validator: validator, logger: logger}
}

// authTokenCookieName is read when no Authorization header is sent
const authTokenCookieName = "auth_token"

// RequireAuth validates the caller's token and stores the claims and the
// acting employee id in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := m.logger.With(zap.String("request_id", GetRequestIDFromContext(ctx)))

		token := tokenFromRequest(r)
		if token == "" {
			log.Warn("request without credentials", zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			log.Warn("rejected token", zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		employeeID := claims.EmployeeID
		if employeeID == "" {
			employeeID = claims.Sub
		}
		log.Debug("caller authenticated", zap.String("employee_id", employeeID))

		ctx = WithEmployeeID(WithClaims(ctx, claims), employeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits callers holding role. Mount it behind RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return m.RequireAnyRole(role)
}

// RequireAnyRole admits callers holding at least one of roles
func (m *AuthMiddleware) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				m.logger.Error("role check without authenticated caller",
					zap.String("request_id", GetRequestIDFromContext(r.Context())))
				_ = utils.WriteUnauthorized(w, "")
				return
			}
			for _, role := range roles {
				if claims.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.logger.Warn("caller lacks role",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.Strings("required", roles),
				zap.Strings("roles", claims.Roles))
			_ = utils.WriteForbidden(w, "Insufficient permissions")
		})
	}
}

// tokenFromRequest prefers "Authorization: Bearer <token>" over the cookie
func tokenFromRequest(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie(authTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
