// Package database provides the database category adapters. Both providers
// persist employee records and report whether each write inserted or updated.
package database

import (
	"github.com/google/uuid"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/models"
)

// employeePayload is the accepted HandleData input
type employeePayload struct {
	ID         string `json:"id" validate:"omitempty,max=64"`
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"max=100"`
}

// decodeEmployee validates the payload. A missing id is generated.
func decodeEmployee(category adapters.Category, provider adapters.ProviderName, payload adapters.Payload) (*models.Employee, error) {
	var p employeePayload
	if err := payload.Decode(&p); err != nil {
		return nil, adapters.NewOperationError(category, provider, "invalid_payload", "invalid employee record", false, err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return &models.Employee{
		ID:         p.ID,
		Name:       p.Name,
		Department: p.Department,
	}, nil
}

func processedResult(a adapters.Adapter, employee *models.Employee, op models.UpsertOperation) *adapters.Result {
	return adapters.NewResult(a, map[string]any{
		"status":    "processed",
		"id":        employee.ID,
		"operation": string(op),
	})
}
