package middleware

import (
	"net/http"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// RequireAuthenticated rejects requests that carry no principal with 401.
func RequireAuthenticated(logger domain.Logger) func(http.Handler) http.Handler {
	return requirePrincipal(logger, nil)
}

// RequireRoles admits principals holding every one of roles.
func RequireRoles(logger domain.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return requirePrincipal(logger, func(p *domain.Principal) bool { return p.HasAllRoles(roles...) })
}

// RequireAnyRole admits principals holding at least one of roles.
func RequireAnyRole(logger domain.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return requirePrincipal(logger, func(p *domain.Principal) bool { return p.HasAnyRole(roles...) })
}

// requirePrincipal must run after BearerAuthMiddleware. Missing principal is 401,
// a principal failing allowed is 403.
func requirePrincipal(logger domain.Logger, allowed func(*domain.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				metrics.IncrementAuthFailure("unauthenticated")
				errResp := domain.NewErrorResponse(domain.ErrUnauthorized, "Authentication is required", "")
				errResp.WriteJSON(w, http.StatusUnauthorized)
				return
			}

			if allowed != nil && !allowed(principal) {
				metrics.IncrementAuthFailure("forbidden")
				logger.Warn(r.Context(), "Access denied", "path", r.URL.Path, "method", r.Method)
				errResp := domain.NewErrorResponse(domain.ErrAccessDenied, "Access denied", domain.ErrForbidden.Error())
				errResp.WriteJSON(w, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
