package config

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "GAME_CATALOG"

// ServerConfig holds HTTP server configuration.
// Note: Fields should be exported (start with uppercase) to be unmarshalled by Viper.
type ServerConfig struct {
	HTTPPort            int `mapstructure:"http_port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `mapstructure:"idle_timeout_seconds"`
}

// PostgresConfig holds the relational store configuration.
type PostgresConfig struct {
	DSN                    string `mapstructure:"dsn"` // Should primarily come from ENV
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `mapstructure:"conn_max_lifetime_seconds"`
	RunMigrations          bool   `mapstructure:"run_migrations"`
}

// RedisConfig holds the cache backing-store configuration, including pool sizing.
type RedisConfig struct {
	Address            string `mapstructure:"address"`
	Password           string `mapstructure:"password"` // Optional
	DB                 int    `mapstructure:"db"`       // Optional
	PoolSize           int    `mapstructure:"pool_size"`
	MinIdleConns       int    `mapstructure:"min_idle_conns"`
	PoolTimeoutMs      int    `mapstructure:"pool_timeout_ms"`
	DialTimeoutMs      int    `mapstructure:"dial_timeout_ms"`
	ReadTimeoutMs      int    `mapstructure:"read_timeout_ms"`
	WriteTimeoutMs     int    `mapstructure:"write_timeout_ms"`
	OperationTimeoutMs int    `mapstructure:"operation_timeout_ms"` // Upper bound for a single cache call
}

// CacheConfig holds cache-aside policy.
type CacheConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds"`
	EvictBatchSize int `mapstructure:"evict_batch_size"`
}

// LogConfig holds logging-related configurations.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AuthConfig holds authentication-related configurations.
type AuthConfig struct {
	SigningKey         string `mapstructure:"signing_key"` // base64, >= 256 bits, should come from ENV
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
}

// AppConfig holds application-specific configurations.
type AppConfig struct {
	ServiceName            string `mapstructure:"service_name"`
	Version                string `mapstructure:"version"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	App      AppConfig      `mapstructure:"app"`
}

// ApplyDefaults fills zero values with the service defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 10
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 10
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = 60
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 20
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.ConnMaxLifetimeSeconds == 0 {
		c.Postgres.ConnMaxLifetimeSeconds = 300
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 20
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Redis.PoolTimeoutMs == 0 {
		c.Redis.PoolTimeoutMs = 2000
	}
	if c.Redis.DialTimeoutMs == 0 {
		c.Redis.DialTimeoutMs = 2000
	}
	if c.Redis.ReadTimeoutMs == 0 {
		c.Redis.ReadTimeoutMs = 1000
	}
	if c.Redis.WriteTimeoutMs == 0 {
		c.Redis.WriteTimeoutMs = 1000
	}
	if c.Redis.OperationTimeoutMs == 0 {
		c.Redis.OperationTimeoutMs = 1500
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 600
	}
	if c.Cache.EvictBatchSize == 0 {
		c.Cache.EvictBatchSize = 5000
	}
	if c.Auth.TokenLifetimeHours == 0 {
		c.Auth.TokenLifetimeHours = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.App.ServiceName == "" {
		c.App.ServiceName = "game-catalog-service"
	}
	if c.App.ShutdownTimeoutSeconds == 0 {
		c.App.ShutdownTimeoutSeconds = 30
	}
}

// TokenLifetime returns the configured bearer token lifetime.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.Auth.TokenLifetimeHours) * time.Hour
}

// CacheTTL returns the configured cache entry TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheOperationTimeout returns the per-call timeout for the cache backing store.
func (c *Config) CacheOperationTimeout() time.Duration {
	return time.Duration(c.Redis.OperationTimeoutMs) * time.Millisecond
}

// Provider defines an interface for accessing application configuration.
// This allows for easy mocking in tests and decouples the app from Viper.
type Provider interface {
	Get() *Config
}

// viperProvider implements the Provider interface using Viper.
type viperProvider struct {
	config atomic.Pointer[Config]
	logger *zap.Logger // zap directly, domain.Logger is built from this config
}

// NewViperProvider creates and initializes a new configuration provider using Viper.
// It loads configuration from file and environment variables, and sets up hot-reloading.
// appCtx is the application lifecycle context used to stop the SIGHUP listener.
func NewViperProvider(appCtx context.Context, logger *zap.Logger) (Provider, error) {
	v := newViper()

	// Attempt to read the configuration file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("Config file not found; relying on defaults and environment variables", zap.Error(err))
		} else {
			logger.Error("Failed to read config file", zap.Error(err))
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		logger.Error("Failed to unmarshal config", zap.Error(err))
		return nil, err
	}

	p := &viperProvider{logger: logger}
	p.config.Store(cfg)

	// Set up SIGHUP for hot-reloading configuration
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Panic recovered in SIGHUP handler goroutine",
					zap.String("goroutine_name", "SIGHUPConfigReloader"),
					zap.Any("panic_info", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()
		defer signal.Stop(sigChan)
		for {
			select {
			case sig := <-sigChan:
				p.logger.Info("SIGHUP received, attempting to reload configuration...", zap.String("signal", sig.String()))
				if err := v.ReadInConfig(); err != nil {
					p.logger.Error("Failed to re-read config file on SIGHUP", zap.Error(err))
					continue
				}
				p.reload(v, "sighup")
			case <-appCtx.Done():
				p.logger.Info("SIGHUPConfigReloader goroutine shutting down due to context cancellation.")
				return
			}
		}
	}()

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("Panic recovered in OnConfigChange callback",
						zap.String("event_name", e.Name),
						zap.Any("panic_info", r),
						zap.String("stacktrace", string(debug.Stack())),
					)
				}
			}()
			p.logger.Info("Config file changed", zap.String("name", e.Name), zap.String("op", e.Op.String()))
			p.reload(v, "file_change")
		})
		v.WatchConfig()
	}

	p.logger.Info("Configuration loaded successfully", zap.String("config_file_used", v.ConfigFileUsed()))
	return p, nil
}

// reload swaps in a freshly unmarshalled config. The signing key is read once at
// startup by the token service, so a reload never rotates it mid-process.
func (p *viperProvider) reload(v *viper.Viper, trigger string) {
	newCfg, err := unmarshal(v)
	if err != nil {
		p.logger.Error("Failed to unmarshal reloaded config", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	p.config.Store(newCfg)
	p.logger.Info("Configuration reloaded successfully", zap.String("trigger", trigger))
}

// Get returns the current configuration.
func (p *viperProvider) Get() *Config {
	return p.config.Load()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(getEnv("VIPER_CONFIG_NAME", "config"))
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnv("VIPER_CONFIG_PATH", "/app/config"))
	v.AddConfigPath(".")

	// server.http_port becomes GAME_CATALOG_SERVER_HTTP_PORT
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows about, so every key is bound
	// explicitly to make pure-ENV deployments work without a config file.
	for _, key := range knownKeys {
		_ = v.BindEnv(key)
	}
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

var knownKeys = []string{
	"server.http_port", "server.read_timeout_seconds", "server.write_timeout_seconds", "server.idle_timeout_seconds",
	"postgres.dsn", "postgres.max_open_conns", "postgres.max_idle_conns", "postgres.conn_max_lifetime_seconds", "postgres.run_migrations",
	"redis.address", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns", "redis.pool_timeout_ms",
	"redis.dial_timeout_ms", "redis.read_timeout_ms", "redis.write_timeout_ms", "redis.operation_timeout_ms",
	"cache.ttl_seconds", "cache.evict_batch_size",
	"log.level",
	"auth.signing_key", "auth.token_lifetime_hours", "auth.bcrypt_cost",
	"app.service_name", "app.version", "app.shutdown_timeout_seconds",
}

// Helper function to read bootstrap env vars with a fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
