// Package leave implements the leave request workflow: request, approve,
// reject and cancel.
package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"github.com/upb/employee-management/services"
)

// Service handles leave requests
type Service struct {
	requests repositories.LeaveRepository
	txMgr    repositories.TransactionManager
	settings config.LeaveSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new leave Service
func NewService(repos *repositories.Repositories, settings config.LeaveSettings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxConsecutiveDays <= 0 {
		settings.MaxConsecutiveDays = 30
	}
	return &Service{
		requests: repos.Leave,
		txMgr:    repos.TxManager,
		settings: settings,
		logger:   logger.With(zap.String("service", "leave")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestLeave validates and stores a pending leave request
func (s *Service) RequestLeave(ctx context.Context, employeeID string, start, end time.Time, reason string) (*models.LeaveRequest, error) {
	employeeID = strings.TrimSpace(employeeID)
	reason = strings.TrimSpace(reason)
	if employeeID == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	if reason == "" {
		return nil, services.NewValidationError("reason is required")
	}
	if !end.After(start) {
		return nil, services.NewValidationError("end date must be after start date")
	}

	earliest := startOfDay(s.now()).AddDate(0, 0, s.settings.MinNoticeDays)
	if startOfDay(start).Before(earliest) {
		if s.settings.MinNoticeDays == 0 {
			return nil, services.NewValidationError("start date cannot be in the past")
		}
		return nil, services.NewValidationError("start date must be at least %d days ahead", s.settings.MinNoticeDays)
	}

	req := models.NewLeaveRequest(employeeID, start, end, reason)
	if days := req.Days(); days > s.settings.MaxConsecutiveDays {
		return nil, services.NewValidationError("leave of %d days exceeds the maximum of %d consecutive days",
			days, s.settings.MaxConsecutiveDays).
			WithDetail("days", days)
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.requests.ListByEmployee(ctx, employeeID)
		if err != nil {
			return services.WrapStorage("failed to list leave requests", err)
		}
		for _, other := range existing {
			if other.IsActive() && other.Overlaps(start, end) {
				return services.NewDomainError(services.ErrorTypeConflict, services.ErrOverlappingLeave.Message, nil).
					WithDetail("conflicting_request_id", other.ID.String())
			}
		}
		if err := s.requests.Create(ctx, req); err != nil {
			return services.WrapStorage("failed to store leave request", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave requested",
		zap.String("employee_id", employeeID),
		zap.String("request_id", req.ID.String()),
		zap.Int("days", req.Days()))
	return req, nil
}

// Get returns a leave request by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, services.ErrLeaveRequestNotFound
	}
	if err != nil {
		return nil, services.WrapStorage("failed to load leave request", err)
	}
	return req, nil
}

// ListByEmployee returns the requests of an employee ordered by start date
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	reqs, err := s.requests.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, services.WrapStorage("failed to list leave requests", err)
	}
	return reqs, nil
}

// Approve moves a pending request to approved
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error) {
	return s.decide(ctx, id, approverID, models.LeaveApproved)
}

// Reject moves a pending request to rejected
func (s *Service) Reject(ctx context.Context, id uuid.UUID, approverID string) (*models.LeaveRequest, error) {
	return s.decide(ctx, id, approverID, models.LeaveRejected)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, approverID string, status models.LeaveStatus) (*models.LeaveRequest, error) {
	approverID = strings.TrimSpace(approverID)
	if approverID == "" {
		return nil, services.NewValidationError("approver id is required")
	}
	return s.transition(ctx, id, func(req *models.LeaveRequest) error {
		if req.EmployeeID == approverID {
			return services.NewDomainError(services.ErrorTypeForbidden, "employees cannot decide their own leave", nil)
		}
		if req.Status != models.LeavePending {
			return invalidTransition(req.Status, status)
		}
		req.Status = status
		req.DecidedBy = approverID
		return nil
	})
}

// Cancel withdraws a pending or approved request on behalf of its employee
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, employeeID string) (*models.LeaveRequest, error) {
	return s.transition(ctx, id, func(req *models.LeaveRequest) error {
		if req.EmployeeID != strings.TrimSpace(employeeID) {
			return services.NewDomainError(services.ErrorTypeForbidden, "only the requesting employee can cancel", nil)
		}
		if !req.IsActive() {
			return invalidTransition(req.Status, models.LeaveCancelled)
		}
		req.Status = models.LeaveCancelled
		return nil
	})
}

// transition loads, mutates and stores a request inside one transaction
func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*models.LeaveRequest) error) (*models.LeaveRequest, error) {
	var updated *models.LeaveRequest
	err := s.inTx(ctx, func(ctx context.Context) error {
		req, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(req); err != nil {
			return err
		}
		req.UpdatedAt = s.now()
		if err := s.requests.UpdateStatus(ctx, req); err != nil {
			return services.WrapStorage("failed to update leave request", err)
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request updated",
		zap.String("request_id", id.String()),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txMgr == nil {
		return fn(ctx)
	}
	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return fn(ctx)
	})
}

func invalidTransition(from, to models.LeaveStatus) error {
	return services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidTransition.Message, nil).
		WithDetail("from", string(from)).
		WithDetail("to", string(to))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
