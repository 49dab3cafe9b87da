package router

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/config"
	"asset-management-api/internal/handler"
	"asset-management-api/internal/metrics"
	"asset-management-api/internal/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Assets    handler.AssetHandlerInterface
	Bulk      handler.BulkHandlerInterface
	Employees handler.EmployeeHandlerInterface
	Activity  handler.ActivityHandlerInterface
	Health    http.Handler
}

// Dependencies are the cross-cutting components the router wires around the handlers.
type Dependencies struct {
	Auth    *middleware.AuthMiddleware
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
}

// NewRouter creates a new router, sets up the routes and wraps them with the
// security and logging middleware.
func NewRouter(h Handlers, deps Dependencies, cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security, deps.Logger)
	loggingMW := middleware.NewLoggingMiddleware(deps.Logger)

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Instrument)
		if cfg.Server.EnableMetrics {
			r.Handle(cfg.Server.MetricsPath, deps.Metrics.Handler()).Methods("GET")
		}
	}

	// Health check
	if h.Health != nil {
		r.Handle("/api/health", h.Health).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(deps.Auth.Authenticate)

	level := func(l auth.AccessLevel, fn http.HandlerFunc) http.Handler {
		return deps.Auth.RequireLevel(l)(fn)
	}

	// Assets
	api.Handle("/assets/export", level(auth.LevelViewer, h.Assets.ExportAssetsHandler)).Methods("GET")
	api.Handle("/assets", level(auth.LevelViewer, h.Assets.ListAssetsHandler)).Methods("GET")
	api.Handle("/assets", level(auth.LevelTechnician, h.Assets.CreateAssetHandler)).Methods("POST")
	api.Handle("/assets/{id}", level(auth.LevelViewer, h.Assets.GetAssetHandler)).Methods("GET")
	api.Handle("/assets/{id}", level(auth.LevelTechnician, h.Assets.UpdateAssetHandler)).Methods("PUT")
	api.Handle("/assets/{id}", level(auth.LevelAdmin, h.Assets.DeleteAssetHandler)).Methods("DELETE")
	api.Handle("/assets/{id}/transactions", level(auth.LevelViewer, h.Assets.GetTransactionsHandler)).Methods("GET")
	api.Handle("/assets/{id}/maintenance", level(auth.LevelViewer, h.Assets.GetMaintenanceHandler)).Methods("GET")

	// Single-asset lifecycle
	api.Handle("/assets/{id}/assign", level(auth.LevelTechnician, h.Assets.AssignHandler)).Methods("POST")
	api.Handle("/assets/{id}/unassign", level(auth.LevelTechnician, h.Assets.UnassignHandler)).Methods("POST")
	api.Handle("/assets/{id}/check-out", level(auth.LevelTechnician, h.Assets.CheckOutHandler)).Methods("POST")
	api.Handle("/assets/{id}/check-in", level(auth.LevelTechnician, h.Assets.CheckInHandler)).Methods("POST")
	api.Handle("/assets/{id}/status", level(auth.LevelTechnician, h.Assets.ChangeStatusHandler)).Methods("POST")
	api.Handle("/assets/{id}/maintenance", level(auth.LevelTechnician, h.Assets.ScheduleMaintenanceHandler)).Methods("POST")
	api.Handle("/assets/{id}/retire", level(auth.LevelTechnician, h.Assets.RetireHandler)).Methods("POST")

	// Status catalog
	api.Handle("/asset-statuses", level(auth.LevelViewer, h.Assets.ListStatusesHandler)).Methods("GET")
	api.Handle("/asset-statuses", level(auth.LevelManager, h.Assets.CreateStatusHandler)).Methods("POST")

	// Bulk actions; per-action levels are enforced by the registry
	api.Handle("/bulk-actions/available", level(auth.LevelViewer, h.Bulk.AvailableActionsHandler)).Methods("POST")
	api.Handle("/bulk-actions/{action}", level(auth.LevelTechnician, h.Bulk.ExecuteHandler)).Methods("POST")
	api.Handle("/asset-sales", level(auth.LevelManager, h.Bulk.CreateSaleHandler)).Methods("POST")

	// Employees
	api.Handle("/employees", level(auth.LevelViewer, h.Employees.ListEmployeesHandler)).Methods("GET")
	api.Handle("/employees", level(auth.LevelManager, h.Employees.CreateEmployeeHandler)).Methods("POST")
	api.Handle("/employees/{id}", level(auth.LevelViewer, h.Employees.GetEmployeeHandler)).Methods("GET")
	api.Handle("/employees/{id}/assets", level(auth.LevelViewer, h.Employees.GetEmployeeAssetsHandler)).Methods("GET")

	// Audit trail
	api.Handle("/activity-logs", level(auth.LevelViewer, h.Activity.ListActivityHandler)).Methods("GET")

	// Wrapped innermost first. CORS stays outside the router so preflight
	// requests never reach method matching.
	var chain http.Handler = r
	chain = securityMW.RequestTimeout(chain)
	chain = securityMW.RateLimit(chain)
	chain = securityMW.CORS(chain)
	chain = securityMW.SecurityHeaders(chain)
	chain = loggingMW.LogRequests(chain)
	chain = securityMW.TrustedProxy(chain)
	chain = loggingMW.RequestID(chain)
	return chain
}
