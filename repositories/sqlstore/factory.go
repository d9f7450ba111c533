package sqlstore

import (
	"github.com/upb/employee-management/repositories"
	"go.uber.org/zap"
)

// NewRepositories creates all repository instances over one pool
func NewRepositories(db *DB, logger *zap.Logger) *repositories.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &repositories.Repositories{
		Employees:   NewEmployeeRepository(db, logger),
		Attendance:  NewAttendanceRepository(db, logger),
		Leave:       NewLeaveRepository(db, logger),
		Performance: NewPerformanceRepository(db, logger),
		TxManager:   NewTransactionManager(db, logger),
	}
}
