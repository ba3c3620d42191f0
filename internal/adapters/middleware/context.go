package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid" // For generating UUIDs
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
	"gitlab.com/timkado/api/game-catalog-service/pkg/contextkeys"
)

const XRequestIDHeader = "X-Request-ID"

// RequestIDMiddleware injects a request ID into the context.
// It tries to get it from the X-Request-ID header, otherwise generates a new UUID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(XRequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, requestID)
		w.Header().Set(XRequestIDHeader, requestID) // Also set it in the response header
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the principal attached by BearerAuthMiddleware, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(*domain.Principal)
	return p, ok && p != nil
}

// WithPrincipal attaches p and its derived logging fields to ctx.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	ctx = context.WithValue(ctx, contextkeys.PrincipalKey, p)
	ctx = context.WithValue(ctx, contextkeys.SubjectKey, p.Subject)
	return context.WithValue(ctx, contextkeys.RolesKey, p.RoleStrings())
}

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
