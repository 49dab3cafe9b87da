package auth

import (
	"context"
	"net/http"
	"strings"
)

// DefaultLocale is used when a request carries no Accept-Language header.
const DefaultLocale = "en"

type principalContextKey struct{}
type localeContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}

// ContextWithLocale stores the negotiated locale.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// ScopeFromRequest builds the request scope from values placed by the auth middleware.
func ScopeFromRequest(r *http.Request) (RequestScope, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		return RequestScope{}, false
	}
	locale, _ := r.Context().Value(localeContextKey{}).(string)
	if locale == "" {
		locale = DefaultLocale
	}
	return RequestScope{Principal: principal, Locale: locale}, true
}

// ParseLocale picks the first language tag of an Accept-Language header.
func ParseLocale(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale
	}
	first := strings.Split(header, ",")[0]
	first = strings.TrimSpace(strings.Split(first, ";")[0])
	if first == "" || first == "*" {
		return DefaultLocale
	}
	return first
}
