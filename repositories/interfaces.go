package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/employee-management/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// EmployeeRepository handles employee record operations
type EmployeeRepository interface {
	// Upsert inserts or replaces an employee and reports which happened
	Upsert(ctx context.Context, employee *models.Employee) (models.UpsertOperation, error)

	// GetByID retrieves an employee by ID
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// AttendanceRepository handles attendance entry operations
type AttendanceRepository interface {
	// Insert stores a new entry
	Insert(ctx context.Context, entry *models.AttendanceEntry) error

	// LastByEmployee returns the most recent entry of an employee
	LastByEmployee(ctx context.Context, employeeID string) (*models.AttendanceEntry, error)

	// ListByEmployee returns the entries of an employee, oldest first
	ListByEmployee(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error)
}

// LeaveRepository handles leave request operations
type LeaveRepository interface {
	// Create stores a new leave request
	Create(ctx context.Context, req *models.LeaveRequest) error

	// GetByID retrieves a leave request by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error)

	// ListByEmployee returns the requests of an employee ordered by start date
	ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error)

	// UpdateStatus changes the status of a request
	UpdateStatus(ctx context.Context, req *models.LeaveRequest) error
}

// PerformanceRepository handles performance record operations
type PerformanceRepository interface {
	// Insert stores a new record
	Insert(ctx context.Context, record *models.PerformanceRecord) error

	// ListByEmployee returns the records of an employee, oldest first
	ListByEmployee(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Employees   EmployeeRepository
	Attendance  AttendanceRepository
	Leave       LeaveRepository
	Performance PerformanceRepository
	TxManager   TransactionManager
}
