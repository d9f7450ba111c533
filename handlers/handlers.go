// Package handlers holds the HTTP handlers of the employee API. Handlers are
// thin: decode, validate, call a service, map the result.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upb/employee-management/middleware"
	"github.com/upb/employee-management/utils"
)

// decodeAndValidate reads a JSON body into v and runs struct validation
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := utils.DecodeJSON(r, v); err != nil {
		return err
	}
	return utils.ValidateStruct(v)
}

// decodeOptional is DecodeJSON for routes whose body may be omitted
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// callerID returns the explicit id when given, otherwise the authenticated
// employee id (empty when auth is disabled).
func callerID(r *http.Request, explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	return middleware.GetEmployeeIDFromContext(r.Context())
}

// actorID returns the employee performing an approval, review or cancel.
// With claims the actor is always the token's employee id and a body id
// naming anyone else is refused; without claims the body id is used as is.
func actorID(r *http.Request, explicit string) (string, bool) {
	explicit = strings.TrimSpace(explicit)
	if middleware.GetClaimsFromContext(r.Context()) == nil {
		return explicit, true
	}
	self := middleware.GetEmployeeIDFromContext(r.Context())
	if explicit != "" && explicit != self {
		return "", false
	}
	return self, true
}

// actingFor reports whether the authenticated caller may act for employeeID.
// Without claims every request is allowed; managers may act for anyone.
func actingFor(r *http.Request, employeeID string) bool {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return true
	}
	if claims.HasRole(RoleManager) {
		return true
	}
	return middleware.GetEmployeeIDFromContext(r.Context()) == employeeID
}

// RoleManager is the role allowed to decide leave and act for other employees
const RoleManager = "manager"
