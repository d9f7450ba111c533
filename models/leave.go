package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaveStatus represents the state of a leave request
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
)

// LeaveRequest represents a leave request of an employee
type LeaveRequest struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	EmployeeID string      `json:"employee_id" db:"employee_id"`
	StartDate  time.Time   `json:"start_date" db:"start_date"`
	EndDate    time.Time   `json:"end_date" db:"end_date"`
	Reason     string      `json:"reason" db:"reason"`
	Status     LeaveStatus `json:"status" db:"status"`
	DecidedBy  string      `json:"decided_by,omitempty" db:"decided_by"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the LeaveRequest model
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// NewLeaveRequest creates a pending leave request
func NewLeaveRequest(employeeID string, start, end time.Time, reason string) *LeaveRequest {
	now := time.Now().UTC()
	return &LeaveRequest{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		Reason:     reason,
		Status:     LeavePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Days returns the number of calendar days covered, counting both ends
func (l *LeaveRequest) Days() int {
	return int(truncateDay(l.EndDate).Sub(truncateDay(l.StartDate))/(24*time.Hour)) + 1
}

// IsActive returns true if the request still blocks the calendar
func (l *LeaveRequest) IsActive() bool {
	return l.Status == LeavePending || l.Status == LeaveApproved
}

// Overlaps reports whether the request shares at least one day with [start, end]
func (l *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !truncateDay(l.StartDate).After(truncateDay(end)) &&
		!truncateDay(start).After(truncateDay(l.EndDate))
}

// truncateDay keeps the calendar date of t in its own zone and re-anchors it
// at UTC midnight, so day arithmetic is unaffected by DST shifts.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
