package middleware

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/ids"
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware provides request logging with security context
type LoggingMiddleware struct {
	logger *logrus.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingMiddleware{
		logger: logger,
	}
}

// RequestID reuses the caller's X-Request-ID when present, otherwise mints
// one, and echoes it on the response.
func (lm *LoggingMiddleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ids.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = ids.NewRequestID()
		}
		w.Header().Set(ids.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ids.ContextWithRequestID(r.Context(), id)))
	})
}

// LogRequests logs incoming requests with security information
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ClientIPFromContext(r.Context())
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		slot := &principalSlot{}
		next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), principalSlotKey{}, slot)))

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   clientIP,
			"user_agent":  r.UserAgent(),
			"request_id":  ids.RequestIDFromContext(r.Context()),
		}
		if slot.principal != nil {
			fields["user_id"] = slot.principal.UserID
			fields["access_level"] = slot.principal.Level.String()
		}
		entry := lm.logger.WithFields(fields)

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			entry.Error("request completed")
		case wrapped.statusCode >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}

		// Security events
		switch wrapped.statusCode {
		case http.StatusTooManyRequests:
			entry.WithField("event", "rate_limited").Warn("SECURITY: rate limit exceeded")
		case http.StatusRequestTimeout:
			entry.WithField("event", "timeout").Warn("SECURITY: request timeout")
		case http.StatusUnauthorized, http.StatusForbidden:
			entry.WithField("event", "access_denied").Warn("SECURITY: access denied")
		}
	})
}

// principalSlot lets the auth middleware report the resolved principal back
// to the access log, which runs outside it.
type principalSlot struct {
	principal *auth.Principal
}

type principalSlotKey struct{}

func recordPrincipal(ctx context.Context, principal auth.Principal) {
	if slot, ok := ctx.Value(principalSlotKey{}).(*principalSlot); ok {
		slot.principal = &principal
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
