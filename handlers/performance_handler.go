package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/services"
	"github.com/upb/employee-management/services/performance"
	"github.com/upb/employee-management/utils"
)

// PerformanceService defines the performance operations used by the handler
type PerformanceService interface {
	RecordPerformance(ctx context.Context, employeeID string, in performance.Input) (*models.PerformanceRecord, error)
	History(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error)
	Summarize(ctx context.Context, employeeID string) (*performance.Summary, error)
}

// PerformanceHandler handles performance review requests
type PerformanceHandler struct {
	service PerformanceService
	logger  *zap.Logger
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(service PerformanceService, logger *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
		logger:  logger,
	}
}

// RecordPerformanceRequest is the body of POST /performance
type RecordPerformanceRequest struct {
	EmployeeID string `json:"employee_id"`
	performance.Input
}

// HandleRecord handles POST /performance. An authenticated caller is always
// the reviewer.
func (h *PerformanceHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordPerformanceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	reviewerID, ok := actorID(r, req.ReviewerID)
	if !ok {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}
	req.ReviewerID = reviewerID

	// field-level validation happens in the service
	if req.EmployeeID == "" {
		_ = utils.WriteBadRequest(w, "employee_id is required", nil)
		return
	}

	record, err := h.service.RecordPerformance(r.Context(), req.EmployeeID, req.Input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, record)
}

// HandleHistory handles GET /performance/{employeeID}
func (h *PerformanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !actingFor(r, employeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	records, err := h.service.History(r.Context(), employeeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, records)
}

// HandleSummary handles GET /performance/{employeeID}/summary
func (h *PerformanceHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !actingFor(r, employeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	summary, err := h.service.Summarize(r.Context(), employeeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, summary)
}
