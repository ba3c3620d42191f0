package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/config"
)

// NewClientOptions maps the cache configuration onto a bounded go-redis pool.
// go-redis health-checks idle connections on checkout, so stale connections are
// discarded before use. Context deadlines are honoured so the adapter's per-operation
// timeout bounds every call, not only the socket timeouts.
func NewClientOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     time.Duration(cfg.PoolTimeoutMs) * time.Millisecond,
		DialTimeout:     time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
		ReadTimeout:     time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout:    time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      1,

		ContextTimeoutEnabled: true,
	}
}
