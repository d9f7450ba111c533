package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/services"
	"github.com/upb/employee-management/utils"
)

// LeaveService defines the leave operations used by the handler
type LeaveService interface {
	RequestLeave(ctx context.Context, employeeID string, start, end time.Time, reason string) (*models.LeaveRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error)
	Approve(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error)
	Reject(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error)
	Cancel(ctx context.Context, id uuid.UUID, employeeID string) (*models.LeaveRequest, error)
}

// LeaveHandler handles leave requests
type LeaveHandler struct {
	service LeaveService
	logger  *zap.Logger
}

// NewLeaveHandler creates a new LeaveHandler
func NewLeaveHandler(service LeaveService, logger *zap.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: service,
		logger:  logger,
	}
}

// RequestLeaveRequest is the body of POST /leave
type RequestLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Reason     string `json:"reason" validate:"required,notblank,max=500"`
}

// DecisionRequest is the body of the approve and reject routes
type DecisionRequest struct {
	ApproverID string `json:"approver_id"`
}

// CancelRequest is the body of the cancel route
type CancelRequest struct {
	EmployeeID string `json:"employee_id"`
}

// HandleRequestLeave handles POST /leave
func (h *LeaveHandler) HandleRequestLeave(w http.ResponseWriter, r *http.Request) {
	var req RequestLeaveRequest
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

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		_ = utils.WriteBadRequest(w, "invalid start_date", map[string]interface{}{"start_date": err.Error()})
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		_ = utils.WriteBadRequest(w, "invalid end_date", map[string]interface{}{"end_date": err.Error()})
		return
	}

	leave, err := h.service.RequestLeave(r.Context(), employeeID, start, end, req.Reason)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, leave)
}

// HandleList handles GET /leave/employee/{employeeID}
func (h *LeaveHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !actingFor(r, employeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	requests, err := h.service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, requests)
}

// HandleGet handles GET /leave/{id}
func (h *LeaveHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	leave, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !actingFor(r, leave.EmployeeID) {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	_ = utils.WriteOK(w, leave)
}

// HandleApprove handles POST /leave/{id}/approve
func (h *LeaveHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

// HandleReject handles POST /leave/{id}/reject
func (h *LeaveHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *LeaveHandler) decide(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := decodeOptional(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	approverID, ok := actorID(r, req.ApproverID)
	if !ok {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	leave, err := fn(r.Context(), id, approverID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, leave)
}

// HandleCancel handles POST /leave/{id}/cancel
func (h *LeaveHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CancelRequest
	if err := decodeOptional(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	employeeID, ok := actorID(r, req.EmployeeID)
	if !ok {
		HandleServiceError(w, services.ErrForbidden, h.logger)
		return
	}

	leave, err := h.service.Cancel(r.Context(), id, employeeID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, leave)
}

func (h *LeaveHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "invalid leave request id", nil)
		return uuid.Nil, false
	}
	return id, true
}
