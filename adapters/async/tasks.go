package async

import (
	"context"
	"time"
)

// TaskProcessPayroll is the built-in payroll task name
const TaskProcessPayroll = "process_payroll"

// processPayroll marks an employee's payroll as processed
func processPayroll(ctx context.Context, employeeID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]any{
		"employee_id": employeeID,
		"status":      "processed",
		"period":      time.Now().UTC().Format("2006-01"),
	}, nil
}
