package http

import (
	"context"
	"net/http"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/middleware"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// Router wires the catalog and auth handlers onto a ServeMux.
type Router struct {
	logger  domain.Logger
	tokens  *application.TokenService
	creds   *application.CredentialService
	catalog *application.CatalogService
}

// NewRouter creates a new Router.
func NewRouter(logger domain.Logger, tokens *application.TokenService, creds *application.CredentialService, catalog *application.CatalogService) *Router {
	return &Router{
		logger:  logger,
		tokens:  tokens,
		creds:   creds,
		catalog: catalog,
	}
}

// RegisterRoutes mounts every API route. Each route runs RequestID then the bearer
// auth gate, then its own role requirement, if any.
func (rt *Router) RegisterRoutes(ctx context.Context, mux *http.ServeMux) {
	anyone := func(h http.Handler) http.Handler { return h }
	authenticated := middleware.RequireAuthenticated(rt.logger)
	admin := middleware.RequireRoles(rt.logger, domain.RoleAdmin)
	reader := middleware.RequireAnyRole(rt.logger, domain.RoleUser, domain.RoleAdmin)

	routes := []struct {
		pattern string
		gate    func(http.Handler) http.Handler
		handler http.HandlerFunc
	}{
		{"POST /api/auth/login", anyone, LoginHandler(rt.creds, rt.logger)},
		{"POST /api/auth/register", anyone, RegisterHandler(rt.creds, rt.logger)},
		{"GET /api/auth/whoami", authenticated, WhoAmIHandler(rt.logger)},

		{"GET /api/users", admin, ListUsersHandler(rt.creds, rt.logger)},
		{"POST /api/users", admin, CreateUserHandler(rt.creds, rt.logger)},

		{"GET /api/games", anyone, ListGamesHandler(rt.catalog, rt.logger)},
		{"GET /api/games/{id}", reader, GetGameHandler(rt.catalog, rt.logger)},
		{"GET /api/games/category/{category}", reader, GamesByCategoryHandler(rt.catalog, rt.logger)},
		{"POST /api/games", admin, CreateGameHandler(rt.catalog, rt.logger)},
		{"PUT /api/games/{id}", admin, UpdateGameHandler(rt.catalog, rt.logger)},
		{"DELETE /api/games/{id}", admin, DeleteGameHandler(rt.catalog, rt.logger)},
		{"DELETE /api/games/cache", admin, InvalidateCacheHandler(rt.catalog, rt.logger)},
	}

	bearer := middleware.BearerAuthMiddleware(rt.tokens, rt.logger)
	for _, route := range routes {
		mux.Handle(route.pattern, middleware.Chain(route.handler, middleware.RequestIDMiddleware, bearer, route.gate))
	}

	rt.logger.Info(ctx, "API routes registered", "count", len(routes))
}
