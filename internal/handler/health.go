package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker is satisfied by the notification client.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// HealthHandler reports liveness of the service and its dependencies.
type HealthHandler struct {
	DB       Pinger
	Notifier HealthChecker

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be nil.
func NewHealthHandler(db Pinger, notifier HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		DB:             db,
		Notifier:       notifier,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// ServeHTTP answers 200 when the database is reachable and 503 otherwise.
// An unreachable notification service is reported but does not fail the check.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, healthCheckTimeout)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checks := map[string]string{}

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			h.ErrorHandler.Logger.WithError(err).Warn("database health check failed")
			checks["database"] = "unreachable"
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}
	if h.Notifier != nil {
		if h.Notifier.IsHealthy(ctx) {
			checks["notifications"] = "ok"
		} else {
			checks["notifications"] = "degraded"
		}
	}

	h.ErrorHandler.SendJSONResponse(w, code, h.ResponseHelper.CreateHealthCheckData(status, checks))
}
