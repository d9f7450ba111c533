package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryType is the kind of attendance entry
type EntryType string

const (
	EntryLogin  EntryType = "login"
	EntryLogout EntryType = "logout"
)

// Valid reports whether the entry type is recognized
func (t EntryType) Valid() bool {
	return t == EntryLogin || t == EntryLogout
}

// AttendanceEntry is one login or logout event of an employee
type AttendanceEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	EntryType  EntryType `json:"entry_type" db:"entry_type"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AttendanceEntry model
func (AttendanceEntry) TableName() string {
	return "attendance_entries"
}

// NewAttendanceEntry creates a new AttendanceEntry stamped with the current time
func NewAttendanceEntry(employeeID string, entryType EntryType) *AttendanceEntry {
	return &AttendanceEntry{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		EntryType:  entryType,
		Timestamp:  time.Now().UTC(),
	}
}
