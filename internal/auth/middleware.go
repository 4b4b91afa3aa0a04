package auth

import (
	"context"
	"net/http"
)

// CookieName is the session cookie the login endpoint sets.
const CookieName = "auth_token"

type contextKey struct{}

var identityKey contextKey

// IdentityFromContext returns the verified identity attached by the
// middleware, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// WithIdentity attaches an identity to the context; used by middleware and
// by handler tests.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

type verifier interface {
	VerifyToken(token string) (*Identity, error)
}

// Authenticate extracts the session cookie, verifies it, and attaches the
// identity to the request context. Requests without a valid token pass
// through anonymously; gating is left to RequireRole.
func Authenticate(svc verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err == nil && cookie.Value != "" {
				if identity, err := svc.VerifyToken(cookie.Value); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose context identity is missing or has a
// different role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if identity.Role != role {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
