package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

// AttendanceRepository implements the repositories.AttendanceRepository interface
type AttendanceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *DB, logger *zap.Logger) repositories.AttendanceRepository {
	return &AttendanceRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new entry
func (r *AttendanceRepository) Insert(ctx context.Context, entry *models.AttendanceEntry) error {
	query := `
		INSERT INTO attendance_entries (id, employee_id, entry_type, timestamp)
		VALUES ($1, $2, $3, $4)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.EntryType,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attendance entry: %w", err)
	}

	r.logger.Debug("attendance entry inserted",
		zap.String("employee_id", entry.EmployeeID),
		zap.String("entry_type", string(entry.EntryType)))
	return nil
}

// LastByEmployee returns the most recent entry of an employee
func (r *AttendanceRepository) LastByEmployee(ctx context.Context, employeeID string) (*models.AttendanceEntry, error) {
	query := `
		SELECT id, employee_id, entry_type, timestamp
		FROM attendance_entries
		WHERE employee_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	executor := GetExecutor(ctx, r.db)
	entry := &models.AttendanceEntry{}

	err := executor.QueryRowContext(ctx, query, employeeID).Scan(
		&entry.ID,
		&entry.EmployeeID,
		&entry.EntryType,
		&entry.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get last attendance entry: %w", err)
	}

	return entry, nil
}

// ListByEmployee returns the entries of an employee, oldest first
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error) {
	query := `
		SELECT id, employee_id, entry_type, timestamp
		FROM attendance_entries
		WHERE employee_id = $1
		ORDER BY timestamp ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AttendanceEntry
	for rows.Next() {
		entry := &models.AttendanceEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.EmployeeID,
			&entry.EntryType,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance entries: %w", err)
	}

	return entries, nil
}
