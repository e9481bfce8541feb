/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. CORS:       Cross-origin requests for frontend
  3. httplog:    Structured request logging (ECS schema, slog)
  4. CleanPath:  Collapse double slashes
  5. Recoverer:  Panic recovery (500 instead of crash)
  6. Heartbeat:  GET /health for load balancers

GET /ready pings the database for readiness checks.

ROUTE GROUPS:
  /api/employees/*      Employees, attendance, payroll, advances
  /api/payroll/*        Cross-employee payroll views
  /api/policy           Policy document
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public; put the service
  behind an authenticating proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Logger receives request logs. Nil disables request logging.
	Logger *slog.Logger

	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Updated-By"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/ready", h.Ready)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)

				// Attendance
				r.Post("/clock-in", h.ClockIn)
				r.Post("/clock-out", h.ClockOut)
				r.Post("/attendance", h.CreateRecord)
				r.Get("/days", h.GetDayRecords)

				// Payroll
				r.Get("/payroll/weekly", h.GetWeeklySummary)
				r.Post("/payroll/weekly/pay", h.MarkPaid)
				r.Get("/payroll/payments", h.ListPayments)
				r.Get("/deductions/{year}", h.GetYearlyDeductions)
				r.Put("/deductions/{year}", h.SetYearlyDeductions)

				// Cash advances
				r.Get("/advances", h.GetAdvances)
				r.Post("/advances", h.CreateAdvance)
				r.Post("/advances/payments", h.CreateAdvancePayment)
			})
		})

		r.Get("/payroll/weekly", h.ListWeeklySummaries)

		r.Get("/policy", h.GetPolicy)
		r.Put("/policy", h.UpdatePolicy)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
