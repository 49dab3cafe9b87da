package middleware

import (
	"asset-management-api/internal/auth"
	apperrors "asset-management-api/pkg/errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// AuthMiddleware resolves the session principal and enforces access levels.
type AuthMiddleware struct {
	tokens     TokenParser
	cookieName string
	logger     *logrus.Logger
}

// NewAuthMiddleware creates a new auth middleware. The session token is read
// from cookieName, or from a Bearer Authorization header.
func NewAuthMiddleware(tokens TokenParser, cookieName string, logger *logrus.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthMiddleware{
		tokens:     tokens,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Authenticate rejects requests without a valid session with 401 and
// attaches the principal and locale to the request context otherwise.
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := am.tokens.Parse(am.sessionToken(r))
		if err != nil {
			am.logger.WithError(err).WithField("path", r.URL.Path).Debug("authentication failed")
			writeError(w, r, http.StatusUnauthorized, "Authentication required", apperrors.ErrorCodeUnauthorized)
			return
		}

		recordPrincipal(r.Context(), principal)
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithLocale(ctx, auth.ParseLocale(r.Header.Get("Accept-Language")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLevel answers 403 unless the authenticated principal holds at
// least the given access level.
func (am *AuthMiddleware) RequireLevel(level auth.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "Authentication required", apperrors.ErrorCodeUnauthorized)
				return
			}
			if !principal.Level.Allows(level) {
				am.logger.WithFields(logrus.Fields{
					"user_id":  principal.UserID,
					"level":    principal.Level.String(),
					"required": level.String(),
					"path":     r.URL.Path,
				}).Info("access level too low")
				writeError(w, r, http.StatusForbidden, "Insufficient permissions", apperrors.ErrorCodeForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (am *AuthMiddleware) sessionToken(r *http.Request) string {
	if am.cookieName != "" {
		if cookie, err := r.Cookie(am.cookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
