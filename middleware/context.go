package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"

	// EmployeeIDKey is the context key for the authenticated employee ID
	EmployeeIDKey contextKey = "employee_id"
)

// Claims represents JWT claims extracted from the token
type Claims struct {
	Sub        string   `json:"sub"`
	EmployeeID string   `json:"employee_id"`
	Roles      []string `json:"roles"`
	Iss        string   `json:"iss"`
	Exp        int64    `json:"exp"`
	Iat        int64    `json:"iat"`
}

// HasRole reports whether the claims carry the given role
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// GetClaimsFromContext retrieves JWT claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds JWT claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetEmployeeIDFromContext retrieves the authenticated employee ID from context
func GetEmployeeIDFromContext(ctx context.Context) string {
	if val := ctx.Value(EmployeeIDKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// WithEmployeeID adds the authenticated employee ID to the context
func WithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, EmployeeIDKey, employeeID)
}
