package models

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceRecord is one review of an employee
type PerformanceRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	EmployeeID     string    `json:"employee_id" db:"employee_id"`
	TaskCompletion float64   `json:"task_completion" db:"task_completion"`
	QualityScore   float64   `json:"quality_score" db:"quality_score"`
	Rating         float64   `json:"rating" db:"rating"`
	ReviewerID     string    `json:"reviewer_id" db:"reviewer_id"`
	Feedback       string    `json:"feedback,omitempty" db:"feedback"`
	RecordedAt     time.Time `json:"recorded_at" db:"recorded_at"`
}

// TableName returns the table name for the PerformanceRecord model
func (PerformanceRecord) TableName() string {
	return "performance_records"
}

// NewPerformanceRecord creates a record stamped with the current time
func NewPerformanceRecord(employeeID string) *PerformanceRecord {
	return &PerformanceRecord{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		RecordedAt: time.Now().UTC(),
	}
}
