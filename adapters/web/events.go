package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/employee-management/middleware"
	"github.com/upb/employee-management/utils"
)

// handlePostEvent handles POST {base}/events. Repeating the same event leaves
// the stored state unchanged apart from the receive time.
func (a *Adapter) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&ev); err != nil {
		details := map[string]interface{}{}
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
		_ = utils.WriteBadRequest(w, "Validation failed", details)
		return
	}
	ev.ReceivedAt = time.Now().UTC()

	a.eventsMu.Lock()
	a.events[ev.EmployeeID] = ev
	a.eventsMu.Unlock()

	a.logger.Debug("employee event received",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("employee_id", ev.EmployeeID),
		zap.String("status", ev.Status))

	_ = utils.WriteOK(w, ev)
}

// handleGetEvent handles GET {base}/events/{employeeID}
func (a *Adapter) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	a.eventsMu.RLock()
	ev, ok := a.events[employeeID]
	a.eventsMu.RUnlock()

	if !ok {
		_ = utils.WriteNotFound(w, "No events for employee")
		return
	}
	_ = utils.WriteOK(w, ev)
}

// LastEvent returns the last event recorded for an employee
func (a *Adapter) LastEvent(employeeID string) (Event, bool) {
	a.eventsMu.RLock()
	defer a.eventsMu.RUnlock()
	ev, ok := a.events[employeeID]
	return ev, ok
}
