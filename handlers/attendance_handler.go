package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/services"
	"github.com/upb/employee-management/utils"
)

// AttendanceService defines the attendance operations used by the handler
type AttendanceService interface {
	LogEntry(ctx context.Context, employeeID, entryType string) (*models.AttendanceEntry, error)
	History(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error)
}

// AttendanceHandler handles attendance requests
type AttendanceHandler struct {
	service AttendanceService
	logger  *zap.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(service AttendanceService, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// LogEntryRequest is the body of POST /attendance
type LogEntryRequest struct {
	EmployeeID string `json:"employee_id"`
	EntryType  string `json:"entry_type" validate:"required"`
}

// HandleLogEntry handles POST /attendance
func (h *AttendanceHandler) HandleLogEntry(w http.ResponseWriter, r *http.Request) {
	var req LogEntryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	employeeID := callerID(r, req.EmployeeID)
	if employeeID == "" {
		_ = utils.WriteBadRequest(w, "employee_id is required", nil)
		return
	}
	if !actingFor(r, employeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	entry, err := h.service.LogEntry(r.Context(), employeeID, req.EntryType)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, entry)
}

// HandleHistory handles GET /attendance/{employeeID}
func (h *AttendanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !actingFor(r, employeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	entries, err := h.service.History(r.Context(), employeeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, entries)
}
