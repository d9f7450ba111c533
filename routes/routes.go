package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upb/employee-management/app"
	"github.com/upb/employee-management/handlers"
	"github.com/upb/employee-management/utils"
)

// SetupRoutes mounts the application routes on the web adapter router and
// returns the composed handler. The web adapter owns the middleware stack.
func SetupRoutes(deps *app.Dependencies) (http.Handler, error) {
	Mount(deps)
	return deps.Web.Handler()
}

// Mount registers all application routes on the web adapter router
func Mount(deps *app.Dependencies) {
	r := deps.Web.Router()

	checks := map[string]handlers.CheckFunc{}
	for name, check := range deps.HealthChecks() {
		checks[name] = check
	}
	health := handlers.NewHealthHandler(checks, deps.Logger)
	attendance := handlers.NewAttendanceHandler(deps.Attendance, deps.Logger)
	leave := handlers.NewLeaveHandler(deps.Leave, deps.Logger)
	performance := handlers.NewPerformanceHandler(deps.Performance, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Web.Authenticated)

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/", attendance.HandleLogEntry)
			r.Get("/{employeeID}", attendance.HandleHistory)
		})

		r.Route("/leave", func(r chi.Router) {
			r.Post("/", leave.HandleRequestLeave)
			r.Get("/employee/{employeeID}", leave.HandleList)
			r.Get("/{id}", leave.HandleGet)
			r.Post("/{id}/cancel", leave.HandleCancel)

			// Decisions require the manager role
			r.Group(func(r chi.Router) {
				r.Use(deps.Web.RequireRole(handlers.RoleManager))
				r.Post("/{id}/approve", leave.HandleApprove)
				r.Post("/{id}/reject", leave.HandleReject)
			})
		})

		r.Route("/performance", func(r chi.Router) {
			r.With(deps.Web.RequireRole(handlers.RoleManager)).Post("/", performance.HandleRecord)
			r.Get("/{employeeID}", performance.HandleHistory)
			r.Get("/{employeeID}/summary", performance.HandleSummary)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
}
