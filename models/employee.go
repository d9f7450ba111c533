package models

import (
	"time"
)

// Employee is the record persisted by the database adapters
type Employee struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" validate:"required,max=255"`
	Department string    `json:"department,omitempty" db:"department" validate:"max=100"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}

// UpsertOperation reports whether an upsert created or replaced a record
type UpsertOperation string

const (
	OperationInserted UpsertOperation = "inserted"
	OperationUpdated  UpsertOperation = "updated"
)
