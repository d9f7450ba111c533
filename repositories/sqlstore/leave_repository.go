package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

// LeaveRepository implements the repositories.LeaveRepository interface
type LeaveRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *DB, logger *zap.Logger) repositories.LeaveRepository {
	return &LeaveRepository{
		db:     db,
		logger: logger,
	}
}

const leaveColumns = `id, employee_id, start_date, end_date, reason, status, decided_by, created_at, updated_at`

// Create stores a new leave request
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (` + leaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		req.ID,
		req.EmployeeID,
		req.StartDate,
		req.EndDate,
		req.Reason,
		req.Status,
		req.DecidedBy,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	r.logger.Debug("leave request created", zap.String("id", req.ID.String()), zap.String("employee_id", req.EmployeeID))
	return nil
}

// GetByID retrieves a leave request by ID
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	req, err := scanLeave(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("leave request %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// ListByEmployee returns the requests of an employee ordered by start date
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE employee_id = $1 ORDER BY start_date ASC, created_at ASC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var out []*models.LeaveRequest
	for rows.Next() {
		req, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		out = append(out, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}
	return out, nil
}

// UpdateStatus changes the status of a request
func (r *LeaveRepository) UpdateStatus(ctx context.Context, req *models.LeaveRequest) error {
	query := `
		UPDATE leave_requests
		SET status = $1, decided_by = $2, updated_at = $3
		WHERE id = $4
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, req.Status, req.DecidedBy, req.UpdatedAt, req.ID)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("leave request %s: %w", req.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("leave request updated", zap.String("id", req.ID.String()), zap.String("status", string(req.Status)))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeave(row rowScanner) (*models.LeaveRequest, error) {
	req := &models.LeaveRequest{}
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.StartDate,
		&req.EndDate,
		&req.Reason,
		&req.Status,
		&req.DecidedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}
