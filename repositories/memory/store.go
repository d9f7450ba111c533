// Package memory provides in-process repository implementations used when no
// database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
)

// Store holds every record in maps guarded by a single mutex
type Store struct {
	txMu        sync.Mutex
	mu          sync.RWMutex
	employees   map[string]*models.Employee
	attendance  map[string][]*models.AttendanceEntry
	leave       map[uuid.UUID]*models.LeaveRequest
	performance map[string][]*models.PerformanceRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		employees:   make(map[string]*models.Employee),
		attendance:  make(map[string][]*models.AttendanceEntry),
		leave:       make(map[uuid.UUID]*models.LeaveRequest),
		performance: make(map[string][]*models.PerformanceRecord),
	}
}

// Repositories returns repository views over the store
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Employees:   &EmployeeRepository{s: s},
		Attendance:  &AttendanceRepository{s: s},
		Leave:       &LeaveRepository{s: s},
		Performance: &PerformanceRepository{s: s},
		TxManager:   &TransactionManager{s: s},
	}
}

// TransactionManager serializes transactions over the store. Writes are
// applied immediately; Rollback does not undo them. Begin on a context that
// already carries a transaction of the same store joins it.
type TransactionManager struct{ s *Store }

type txKey struct{}

// Begin blocks until no other transaction is open
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if outer, ok := ctx.Value(txKey{}).(*Transaction); ok && outer.s == tm.s {
		return &Transaction{s: tm.s, ctx: ctx, joined: true}, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	tm.s.txMu.Lock()
	t := &Transaction{s: tm.s}
	t.ctx = context.WithValue(ctx, txKey{}, t)
	return t, nil
}

// InTransaction executes fn while holding the transaction lock
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Transaction releases the store's transaction lock once
type Transaction struct {
	s      *Store
	ctx    context.Context
	once   sync.Once
	joined bool
}

func (t *Transaction) end() {
	if !t.joined {
		t.once.Do(t.s.txMu.Unlock)
	}
}

// Commit ends the transaction
func (t *Transaction) Commit() error {
	t.end()
	return nil
}

// Rollback ends the transaction
func (t *Transaction) Rollback() error {
	t.end()
	return nil
}

// Context returns the transaction context
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// EmployeeRepository implements repositories.EmployeeRepository
type EmployeeRepository struct{ s *Store }

// Upsert inserts or replaces an employee
func (r *EmployeeRepository) Upsert(ctx context.Context, employee *models.Employee) (models.UpsertOperation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	cp := *employee
	cp.UpdatedAt = now

	op := models.OperationInserted
	if existing, ok := r.s.employees[employee.ID]; ok {
		op = models.OperationUpdated
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	r.s.employees[employee.ID] = &cp
	return op, nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// AttendanceRepository implements repositories.AttendanceRepository
type AttendanceRepository struct{ s *Store }

// Insert stores a new entry
func (r *AttendanceRepository) Insert(ctx context.Context, entry *models.AttendanceEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *entry
	r.s.attendance[entry.EmployeeID] = append(r.s.attendance[entry.EmployeeID], &cp)
	return nil
}

// LastByEmployee returns the most recent entry of an employee
func (r *AttendanceRepository) LastByEmployee(ctx context.Context, employeeID string) (*models.AttendanceEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.attendance[employeeID]
	if len(entries) == 0 {
		return nil, repositories.ErrNotFound
	}
	cp := *entries[len(entries)-1]
	return &cp, nil
}

// ListByEmployee returns the entries of an employee, oldest first
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.AttendanceEntry, 0, len(r.s.attendance[employeeID]))
	for _, e := range r.s.attendance[employeeID] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// LeaveRepository implements repositories.LeaveRepository
type LeaveRepository struct{ s *Store }

// Create stores a new leave request
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *req
	r.s.leave[req.ID] = &cp
	return nil
}

// GetByID retrieves a leave request by ID
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.leave[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

// ListByEmployee returns the requests of an employee ordered by start date
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.LeaveRequest
	for _, req := range r.s.leave {
		if req.EmployeeID == employeeID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

// UpdateStatus changes the status of a request
func (r *LeaveRepository) UpdateStatus(ctx context.Context, req *models.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.leave[req.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Status = req.Status
	existing.DecidedBy = req.DecidedBy
	existing.UpdatedAt = req.UpdatedAt
	return nil
}

// PerformanceRepository implements repositories.PerformanceRepository
type PerformanceRepository struct{ s *Store }

// Insert stores a new record
func (r *PerformanceRepository) Insert(ctx context.Context, record *models.PerformanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *record
	r.s.performance[record.EmployeeID] = append(r.s.performance[record.EmployeeID], &cp)
	return nil
}

// ListByEmployee returns the records of an employee, oldest first
func (r *PerformanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*models.PerformanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.PerformanceRecord, 0, len(r.s.performance[employeeID]))
	for _, rec := range r.s.performance[employeeID] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
