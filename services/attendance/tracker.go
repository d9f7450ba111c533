// Package attendance records employee login and logout entries.
package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
	"github.com/upb/employee-management/services"
)

// Tracker validates and stores attendance entries
type Tracker struct {
	entries  repositories.AttendanceRepository
	txMgr    repositories.TransactionManager
	settings config.AttendanceSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker creates a new Tracker over the attendance repository
func NewTracker(repos *repositories.Repositories, settings config.AttendanceSettings, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		entries:  repos.Attendance,
		txMgr:    repos.TxManager,
		settings: settings,
		logger:   logger.With(zap.String("service", "attendance")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LogEntry records a login or logout. A login while logged in, or a logout
// while logged out, is rejected unless repeated entries are allowed.
func (t *Tracker) LogEntry(ctx context.Context, employeeID, entryType string) (*models.AttendanceEntry, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	kind := models.EntryType(strings.ToLower(strings.TrimSpace(entryType)))
	if !kind.Valid() {
		return nil, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidEntryType.Message, nil).
			WithDetail("entry_type", entryType)
	}

	record := func(ctx context.Context) (*models.AttendanceEntry, error) {
		if !t.settings.AllowRepeatedEntries {
			if err := t.checkSequence(ctx, employeeID, kind); err != nil {
				return nil, err
			}
		}
		entry := models.NewAttendanceEntry(employeeID, kind)
		entry.Timestamp = t.now()
		if err := t.entries.Insert(ctx, entry); err != nil {
			return nil, services.WrapStorage("failed to store attendance entry", err)
		}
		return entry, nil
	}

	var (
		entry *models.AttendanceEntry
		err   error
	)
	if t.txMgr != nil {
		entry, err = services.WithTransactionResult(ctx, t.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.AttendanceEntry, error) {
			return record(ctx)
		})
	} else {
		entry, err = record(ctx)
	}
	if err != nil {
		return nil, err
	}

	t.logger.Info("attendance entry logged",
		zap.String("employee_id", employeeID),
		zap.String("entry_type", string(kind)))
	return entry, nil
}

func (t *Tracker) checkSequence(ctx context.Context, employeeID string, kind models.EntryType) error {
	last, err := t.entries.LastByEmployee(ctx, employeeID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return services.WrapStorage("failed to load last attendance entry", err)
	}
	loggedIn := last != nil && last.EntryType == models.EntryLogin

	switch {
	case kind == models.EntryLogin && loggedIn:
		return services.ErrAlreadyLoggedIn
	case kind == models.EntryLogout && !loggedIn:
		return services.ErrNotLoggedIn
	}
	return nil
}

// IsLoggedIn reports whether the latest entry of an employee is a login
func (t *Tracker) IsLoggedIn(ctx context.Context, employeeID string) (bool, error) {
	last, err := t.entries.LastByEmployee(ctx, employeeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, services.WrapStorage("failed to load last attendance entry", err)
	}
	return last.EntryType == models.EntryLogin, nil
}

// History returns the entries of an employee, oldest first
func (t *Tracker) History(ctx context.Context, employeeID string) ([]*models.AttendanceEntry, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, services.NewValidationError("employee id is required")
	}
	entries, err := t.entries.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, services.WrapStorage("failed to list attendance entries", err)
	}
	return entries, nil
}
