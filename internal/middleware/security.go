package middleware

import (
	"asset-management-api/internal/config"
	"asset-management-api/internal/ids"
	apperrors "asset-management-api/pkg/errors"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a per-client limiter survives without traffic.
const clientIdleTTL = 10 * time.Minute

type clientIPKey struct{}

// ClientIPFromContext returns the address resolved by TrustedProxy.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware carries the per-client rate limiters and the security
// settings the HTTP chain is built from.
type SecurityMiddleware struct {
	config *config.SecurityConfig
	logger *logrus.Logger
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewSecurityMiddleware creates a new security middleware with the given config
func NewSecurityMiddleware(cfg *config.SecurityConfig, logger *logrus.Logger) *SecurityMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SecurityMiddleware{
		config:  cfg,
		logger:  logger,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// RateLimit answers 429 once a client exhausts its token bucket.
func (sm *SecurityMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := sm.getClientIP(r)

		if !sm.limiterFor(clientIP).Allow() {
			sm.logger.WithField("client_ip", clientIP).Debug("rate limit exceeded")
			writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded", apperrors.ErrorCodeRateLimit)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (sm *SecurityMiddleware) limiterFor(clientIP string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	if now.Sub(sm.lastSweep) > clientIdleTTL {
		for ip, c := range sm.clients {
			if now.Sub(c.lastSeen) > clientIdleTTL {
				delete(sm.clients, ip)
			}
		}
		sm.lastSweep = now
	}

	c, exists := sm.clients[clientIP]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(sm.config.RateLimitRPS), sm.config.RateLimitBurst)}
		sm.clients[clientIP] = c
	}
	c.lastSeen = now
	return c.limiter
}

var (
	corsHeaders = map[string]string{
		"Access-Control-Allow-Methods":     "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers":     "Content-Type, Authorization, X-Requested-With, X-Request-ID, Accept-Language",
		"Access-Control-Expose-Headers":    "X-Request-ID, Content-Disposition",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Max-Age":           "86400",
	}

	hardeningHeaders = map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
)

func setHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

// CORS echoes an allowed Origin back and answers preflight requests itself.
func (sm *SecurityMiddleware) CORS(next http.Handler) http.Handler {
	if !sm.config.EnableCORS {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && listed(sm.config.AllowedOrigins, origin, true) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		setHeaders(w, corsHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestTimeout bounds the request context. Handlers observe the deadline
// through their derived contexts and answer 408 themselves.
func (sm *SecurityMiddleware) RequestTimeout(next http.Handler) http.Handler {
	if sm.config.RequestTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), sm.config.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TrustedProxy resolves the client address once and stores it for the
// rate limiter and the request log.
func (sm *SecurityMiddleware) TrustedProxy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey{}, sm.getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (sm *SecurityMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w, hardeningHeaders)
		next.ServeHTTP(w, r)
	})
}

// getClientIP prefers an address already resolved for this request. Forwarding
// headers count only when the peer is a trusted proxy.
func (sm *SecurityMiddleware) getClientIP(r *http.Request) string {
	if ip := ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}

	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !listed(sm.config.TrustedProxies, peer, false) {
		return peer
	}

	forwarded, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	if forwarded = strings.TrimSpace(forwarded); forwarded != "" {
		return forwarded
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

// listed reports whether value appears in entries; wildcard lets "*" match anything.
func listed(entries []string, value string, wildcard bool) bool {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == value || (wildcard && e == "*") {
			return true
		}
	}
	return false
}

// writeError renders the same error body as the handlers.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, code apperrors.ErrorCode) {
	body := map[string]string{
		"error": message,
		"code":  string(code),
	}
	if id := ids.RequestIDFromContext(r.Context()); id != "" {
		body["request_id"] = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
