package sqlstore

import (
	"context"
	"fmt"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

// PerformanceRepository implements the repositories.PerformanceRepository interface
type PerformanceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *DB, logger *zap.Logger) repositories.PerformanceRepository {
	return &PerformanceRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new record
func (r *PerformanceRepository) Insert(ctx context.Context, record *models.PerformanceRecord) error {
	query := `
		INSERT INTO performance_records (id, employee_id, task_completion, quality_score, rating, reviewer_id, feedback, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		record.ID,
		record.EmployeeID,
		record.TaskCompletion,
		record.QualityScore,
		record.Rating,
		record.ReviewerID,
		record.Feedback,
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance record: %w", err)
	}

	r.logger.Debug("performance record inserted", zap.String("employee_id", record.EmployeeID))
	return nil
}

// ListByEmployee returns the records of an employee, oldest first
func (r *PerformanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error) {
	query := `
		SELECT id, employee_id, task_completion, quality_score, rating, reviewer_id, feedback, recorded_at
		FROM performance_records
		WHERE employee_id = $1
		ORDER BY recorded_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}
	defer rows.Close()

	var out []*models.PerformanceRecord
	for rows.Next() {
		rec := &models.PerformanceRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.TaskCompletion,
			&rec.QualityScore,
			&rec.Rating,
			&rec.ReviewerID,
			&rec.Feedback,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance record: %w", err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance records: %w", err)
	}
	return out, nil
}
