package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/employee-management/adapters"
	"github.com/upb/employee-management/app"
	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/services/performance"
	"github.com/upb/employee-management/utils"
)

// demoProviders are the provider names the walkthrough requests; each is an
// alias of a bundled provider
var demoProviders = config.ProvidersConfig{
	Web:      "flask",
	Database: "sqlalchemy",
	Async:    "aiohttp",
	ML:       "sklearn",
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Walk through every adapter category and the employee services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			manager, logger, err := loadSettings(ctx, func(cfg *config.Config) {
				cfg.Providers = demoProviders
				cfg.Web.Debug = true
			})
			if err != nil {
				return err
			}
			defer logger.Sync()

			deps, err := app.NewDependencies(ctx, manager, logger)
			if err != nil {
				logger.Error("system error", zap.Error(err))
				return err
			}
			defer deps.Close(ctx)

			if err := runDemo(ctx, cmd.OutOrStdout(), deps); err != nil {
				logger.Error("system error", zap.Error(err))
				return fmt.Errorf("system error: %w", err)
			}
			return nil
		},
	}
}

// runDemo exercises each adapter and then the core services. Adapter
// failures abort the run; service failures are reported and the run goes on.
func runDemo(ctx context.Context, out io.Writer, deps *app.Dependencies) error {
	// A created but uninitialized adapter refuses work
	fresh, err := deps.Registry.CreateSync(adapters.CategoryML, demoProviders.Provider(adapters.CategoryML))
	if err != nil {
		return err
	}
	if _, err := fresh.HandleData(ctx, adapters.Payload{}); errors.Is(err, adapters.ErrNotInitialized) {
		fmt.Fprintf(out, "Uninitialized adapter: %v\n", err)
	} else {
		return fmt.Errorf("expected %v from an uninitialized adapter, got %v", adapters.ErrNotInitialized, err)
	}
	_ = fresh.Close()

	// 1. Web
	deps.Web.Router().Get("/test", func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test route"})
	})
	webResult, err := deps.Web.HandleData(ctx, adapters.Payload{"employee_id": "EMP001", "status": "login"})
	if err != nil {
		return fmt.Errorf("web adapter: %w", err)
	}
	fmt.Fprintf(out, "Web Response: %s\n", webResult)

	testResult, err := deps.Web.HandleData(ctx, adapters.Payload{"method": http.MethodGet, "path": "/test"})
	if err != nil {
		return fmt.Errorf("web adapter: %w", err)
	}
	fmt.Fprintf(out, "Test Route: %s\n", testResult)

	// 2. Database
	dbResult, err := deps.Database.HandleData(ctx, adapters.Payload{
		"id":         "EMP001",
		"name":       "John Doe",
		"department": "IT",
	})
	if err != nil {
		return fmt.Errorf("database adapter: %w", err)
	}
	fmt.Fprintf(out, "Database Operation: %s\n", dbResult)

	// 3. Async; the result exists only once the future is awaited
	future, err := deps.Async.HandleData(ctx, adapters.Payload{
		"task":         "process_payroll",
		"employee_ids": []string{"EMP001", "EMP002"},
	})
	if err != nil {
		return fmt.Errorf("async adapter: %w", err)
	}
	asyncResult, err := future.Await(ctx)
	if err != nil {
		return fmt.Errorf("async adapter: %w", err)
	}
	fmt.Fprintf(out, "Async Operation Result: %s\n", asyncResult)

	// 4. ML
	prediction, err := deps.ML.HandleData(ctx, adapters.Payload{
		"attendance_rate": 0.95,
		"tasks_completed": 150,
		"quality_score":   4.8,
	})
	if err != nil {
		return fmt.Errorf("ml adapter: %w", err)
	}
	fmt.Fprintf(out, "ML Prediction: %s\n", prediction)

	// 5. Core system operations
	employeeID := "EMP001"

	if _, err := deps.Attendance.LogEntry(ctx, employeeID, "login"); err != nil {
		fmt.Fprintf(out, "Attendance error: %v\n", err)
	} else {
		fmt.Fprintln(out, "Attendance logged successfully")
	}

	start := time.Now().UTC().AddDate(0, 0, 5)
	end := start.AddDate(0, 0, 2)
	if req, err := deps.Leave.RequestLeave(ctx, employeeID, start, end, "Vacation"); err != nil {
		fmt.Fprintf(out, "Leave request error: %v\n", err)
	} else {
		fmt.Fprintf(out, "Leave requested successfully: %s (%s, %d days)\n", req.ID, req.Status, req.Days())
	}

	_, err = deps.Performance.RecordPerformance(ctx, employeeID, performance.Input{
		TaskCompletion: 95,
		QualityScore:   4.8,
		Rating:         4.8,
		ReviewerID:     "MANAGER01",
		Feedback:       "Excellent work",
	})
	if err != nil {
		fmt.Fprintf(out, "Performance tracking error: %v\n", err)
	} else {
		fmt.Fprintln(out, "Performance recorded successfully")
	}

	return nil
}
