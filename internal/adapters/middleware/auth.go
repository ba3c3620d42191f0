package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
	"gitlab.com/timkado/api/game-catalog-service/pkg/contextkeys"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// BearerAuthMiddleware verifies an "Authorization: Bearer <token>" header and attaches the
// resulting principal to the request context. Requests without a bearer header are
// forwarded unchanged so anonymous routes keep working; a bearer token that fails
// verification aborts the request with 401.
func BearerAuthMiddleware(tokens *application.TokenService, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already evaluated for this request (middleware mounted twice).
			if evaluated, _ := r.Context().Value(contextkeys.AuthGateKey).(bool); evaluated {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), contextkeys.AuthGateKey, true)

			header := r.Header.Get(authorizationHeader)
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			principal, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				reason := tokenFailureReason(err)
				metrics.IncrementAuthFailure(reason)
				logger.Warn(ctx, "Bearer token rejected", "path", r.URL.Path, "reason", reason, "error", err.Error())

				errResp := domain.NewErrorResponse(domain.ErrUnauthorized, "Invalid or expired token", "")
				errResp.WriteJSON(w, http.StatusUnauthorized)
				return
			}

			ctx = WithPrincipal(ctx, principal)
			logger.Debug(ctx, "Bearer token accepted", "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, application.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, application.ErrTokenInvalidSignature):
		return "token_invalid_signature"
	default:
		return "token_malformed"
	}
}
