package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/config"
	apphttp "gitlab.com/timkado/api/game-catalog-service/internal/adapters/http"
	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/logger"
	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/postgres"
	appredis "gitlab.com/timkado/api/game-catalog-service/internal/adapters/redis"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
	"gitlab.com/timkado/api/game-catalog-service/pkg/crypto"
)

// InitialZapLoggerProvider provides a basic *zap.Logger instance, primarily for config initialization.
// It returns the logger, a cleanup function (for syncing), and an error if creation fails.
func InitialZapLoggerProvider() (*zap.Logger, func(), error) {
	logger, err := zap.NewProduction()
	if err != nil {
		// Try NewDevelopment if NewProduction fails
		logger, err = zap.NewDevelopment()
		if err != nil {
			// As a last resort, use NewExample, which does not return an error.
			logger = zap.NewExample()
			fmt.Fprintf(os.Stderr, "Failed to create initial zap logger (production and development failed, falling back to example): %v\n", err)
		}
	}

	cleanup := func() {
		// Syncing flushes any buffered log entries.
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync initial zap logger: %v\n", syncErr)
		}
	}
	return logger, cleanup, nil
}

// App struct is defined here for Wire to use.
// It should be the single definition of App in the bootstrap package.
type App struct {
	configProvider config.Provider
	logger         domain.Logger
	httpServeMux   *http.ServeMux
	httpServer     *http.Server
	apiRouter      *apphttp.Router
	redisClient    *redis.Client
	db             *sql.DB
}

// NewApp is the constructor for App, also for Wire.
func NewApp(
	cfgProvider config.Provider,
	appLogger domain.Logger,
	mux *http.ServeMux,
	server *http.Server,
	apiRouter *apphttp.Router,
	redisClient *redis.Client,
	db *sql.DB,
) (*App, func(), error) {
	app := &App{
		configProvider: cfgProvider,
		logger:         appLogger,
		httpServeMux:   mux,
		httpServer:     server,
		apiRouter:      apiRouter,
		redisClient:    redisClient,
		db:             db,
	}

	// Redis and Postgres are closed by their own provider cleanups.
	cleanup := func() {
		app.logger.Info(context.Background(), "Running app cleanup...")
	}
	return app, cleanup, nil
}

// ConfigProvider provides the application configuration.
// appCtx bounds the lifetime of the config reload goroutines.
func ConfigProvider(appCtx context.Context, logger *zap.Logger) (config.Provider, error) {
	return config.NewViperProvider(appCtx, logger)
}

// LoggerProvider provides the application logger.
func LoggerProvider(cfgProvider config.Provider) (domain.Logger, error) {
	appCfg := cfgProvider.Get()
	return logger.NewZapAdapter(cfgProvider, appCfg.App.ServiceName)
}

// HTTPServeMuxProvider provides the main HTTP multiplexer.
func HTTPServeMuxProvider() *http.ServeMux {
	return http.NewServeMux()
}

// HTTPGracefulServerProvider provides a new HTTP server configured for graceful shutdown.
func HTTPGracefulServerProvider(cfgProvider config.Provider, mux *http.ServeMux) *http.Server {
	srvCfg := cfgProvider.Get().Server

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", srvCfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  time.Duration(srvCfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(srvCfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(srvCfg.IdleTimeoutSeconds) * time.Second,
	}
}

// RedisClientProvider provides a pooled Redis client and a cleanup function.
func RedisClientProvider(cfgProvider config.Provider, appLogger domain.Logger) (*redis.Client, func(), error) {
	appCfg := cfgProvider.Get()
	client := redis.NewClient(appredis.NewClientOptions(appCfg.Redis))

	pingCtx, cancel := context.WithTimeout(context.Background(), appCfg.CacheOperationTimeout())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The cache is an optimization; start anyway and let every cache call fail open.
		appLogger.Warn(context.Background(), "Redis not reachable at startup, continuing without cache", "error", err.Error(), "address", appCfg.Redis.Address)
	} else {
		appLogger.Info(context.Background(), "Successfully connected to Redis", "address", appCfg.Redis.Address)
	}

	cleanup := func() {
		client.Close()
		appLogger.Info(context.Background(), "Redis connection closed")
	}
	return client, cleanup, nil
}

// CacheBackendProvider provides the Redis-backed cache backend.
func CacheBackendProvider(redisClient *redis.Client, logger domain.Logger, cfgProvider config.Provider) *appredis.CacheBackendAdapter {
	return appredis.NewCacheBackendAdapter(redisClient, logger, cfgProvider.Get().CacheOperationTimeout())
}

// PostgresProvider opens the connection pool and applies migrations when enabled.
func PostgresProvider(appCtx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (*sql.DB, func(), error) {
	pgCfg := cfgProvider.Get().Postgres

	db, err := postgres.Open(appCtx, pgCfg)
	if err != nil {
		appLogger.Error(appCtx, "Failed to connect to Postgres", "error", err.Error())
		return nil, nil, err
	}

	if pgCfg.RunMigrations {
		if err := postgres.Migrate(appCtx, db); err != nil {
			db.Close()
			appLogger.Error(appCtx, "Failed to apply migrations", "error", err.Error())
			return nil, nil, err
		}
		appLogger.Info(appCtx, "Database migrations applied")
	}

	cleanup := func() {
		db.Close()
		appLogger.Info(context.Background(), "Postgres connection pool closed")
	}
	return db, cleanup, nil
}

// GameRepositoryProvider provides the Postgres game repository.
func GameRepositoryProvider(db *sql.DB) *postgres.GameRepository {
	return postgres.NewGameRepository(db)
}

// PasswordHasherProvider provides the bcrypt password hasher.
func PasswordHasherProvider(cfgProvider config.Provider) *crypto.BcryptHasher {
	return crypto.NewBcryptHasher(cfgProvider.Get().Auth.BcryptCost)
}

// TokenServiceProvider decodes the signing key once; the process refuses to start without it.
func TokenServiceProvider(cfgProvider config.Provider) (*application.TokenService, error) {
	authCfg := cfgProvider.Get()
	key, err := crypto.DecodeSigningKey(authCfg.Auth.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("invalid auth.signing_key: %w", err)
	}
	return application.NewTokenService(key, authCfg.TokenLifetime()), nil
}

// CacheAsideStoreProvider provides the fail-open cache-aside store.
func CacheAsideStoreProvider(backend domain.CacheBackend, logger domain.Logger, cfgProvider config.Provider) *application.CacheAsideStore {
	return application.NewCacheAsideStore(backend, logger, cfgProvider.Get().Cache.EvictBatchSize)
}

// CatalogServiceProvider provides the CatalogService.
func CatalogServiceProvider(repo domain.GameRepository, store *application.CacheAsideStore, cfgProvider config.Provider, logger domain.Logger) *application.CatalogService {
	return application.NewCatalogService(repo, store, cfgProvider.Get().CacheTTL(), logger)
}

// ProviderSet is the Wire provider set for the entire application.
var ProviderSet = wire.NewSet(
	ConfigProvider,
	LoggerProvider,
	HTTPServeMuxProvider,
	HTTPGracefulServerProvider,
	InitialZapLoggerProvider,

	// Infrastructure Adapters
	RedisClientProvider,
	CacheBackendProvider,
	wire.Bind(new(domain.CacheBackend), new(*appredis.CacheBackendAdapter)),
	PostgresProvider,
	GameRepositoryProvider,
	wire.Bind(new(domain.GameRepository), new(*postgres.GameRepository)),
	postgres.NewUserRepository,
	wire.Bind(new(domain.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(domain.RoleRepository), new(*postgres.UserRepository)),
	PasswordHasherProvider,
	wire.Bind(new(domain.PasswordHasher), new(*crypto.BcryptHasher)),

	// Application Services
	TokenServiceProvider,
	application.NewCredentialService,
	CacheAsideStoreProvider,
	CatalogServiceProvider,

	// HTTP
	apphttp.NewRouter,
	NewApp,
)
