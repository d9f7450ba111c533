package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

// EmployeeRepository implements the repositories.EmployeeRepository interface
type EmployeeRepository struct {
	db     *DB
	tm     repositories.TransactionManager
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		tm:     NewTransactionManager(db, logger),
		logger: logger,
	}
}

// Upsert inserts or replaces an employee. The existence check and the write
// run in one transaction.
func (r *EmployeeRepository) Upsert(ctx context.Context, employee *models.Employee) (models.UpsertOperation, error) {
	op := models.OperationInserted

	err := r.tm.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		executor := GetExecutor(ctx, r.db)

		var exists int
		err := executor.QueryRowContext(ctx, `SELECT 1 FROM employees WHERE id = $1`, employee.ID).Scan(&exists)
		switch {
		case err == nil:
			op = models.OperationUpdated
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("failed to check employee: %w", err)
		}

		now := time.Now().UTC()
		query := `
			INSERT INTO employees (id, name, department, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				department = excluded.department,
				updated_at = excluded.updated_at
		`
		if _, err := executor.ExecContext(ctx, query,
			employee.ID,
			employee.Name,
			employee.Department,
			now,
			now,
		); err != nil {
			return fmt.Errorf("failed to upsert employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug("employee upserted", zap.String("id", employee.ID), zap.String("operation", string(op)))
	return op, nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `
		SELECT id, name, department, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	employee := &models.Employee{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Department,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, nil
}
