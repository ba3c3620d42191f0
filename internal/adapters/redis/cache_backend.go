package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// evictPatternScript collects every key matching ARGV[1] with SCAN first and only then
// deletes them in DEL calls of at most ARGV[2] keys. Deleting while the cursor is still
// walking the keyspace can make SCAN skip keys.
var evictPatternScript = redis.NewScript(`
local cursor = "0"
local keys = {}
local batch = tonumber(ARGV[2])
repeat
	local res = redis.call("SCAN", cursor, "MATCH", ARGV[1], "COUNT", batch)
	cursor = res[1]
	for _, k in ipairs(res[2]) do
		keys[#keys + 1] = k
	end
until cursor == "0"
local deleted = 0
for i = 1, #keys, batch do
	local last = math.min(i + batch - 1, #keys)
	deleted = deleted + redis.call("DEL", unpack(keys, i, last))
end
return deleted
`)

// maxDeleteBatch bounds the arguments unpacked into a single DEL inside the script.
const maxDeleteBatch = 5000

// CacheBackendAdapter implements domain.CacheBackend on top of a Redis client.
// Every call is bounded by opTimeout in addition to the client's own socket timeouts.
type CacheBackendAdapter struct {
	redisClient *redis.Client
	logger      domain.Logger
	opTimeout   time.Duration
}

// NewCacheBackendAdapter creates a new CacheBackendAdapter.
func NewCacheBackendAdapter(redisClient *redis.Client, logger domain.Logger, opTimeout time.Duration) *CacheBackendAdapter {
	if redisClient == nil {
		panic("redisClient cannot be nil in NewCacheBackendAdapter")
	}
	if logger == nil {
		panic("logger cannot be nil in NewCacheBackendAdapter")
	}
	if opTimeout <= 0 {
		opTimeout = 1500 * time.Millisecond
	}
	return &CacheBackendAdapter{
		redisClient: redisClient,
		logger:      logger,
		opTimeout:   opTimeout,
	}
}

// Get performs a GET and classifies the outcome instead of returning an error.
func (a *CacheBackendAdapter) Get(ctx context.Context, key string) domain.CacheLookup {
	opCtx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	val, err := a.redisClient.Get(opCtx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CacheLookup{Status: domain.CacheMiss}
	}
	if err != nil {
		return domain.CacheLookup{
			Status: domain.CacheError,
			Err:    fmt.Errorf("redis GET for key '%s' failed: %w", key, err),
		}
	}
	return domain.CacheLookup{Status: domain.CacheHit, Value: val}
}

// Set stores value under key with the given TTL (SET key value EX ttl).
func (a *CacheBackendAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	if err := a.redisClient.Set(opCtx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET for key '%s' failed: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (a *CacheBackendAdapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	opCtx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	if err := a.redisClient.Del(opCtx, keys...).Err(); err != nil {
		return fmt.Errorf("redis DEL for keys %v failed: %w", keys, err)
	}
	return nil
}

// DeletePattern removes every key matching pattern using evictPatternScript.
func (a *CacheBackendAdapter) DeletePattern(ctx context.Context, pattern string, batchSize int) (int64, error) {
	if batchSize <= 0 || batchSize > maxDeleteBatch {
		batchSize = maxDeleteBatch
	}
	opCtx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	deleted, err := evictPatternScript.Run(opCtx, a.redisClient, []string{}, pattern, batchSize).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis EVAL (pattern delete) for '%s' failed: %w", pattern, err)
	}
	a.logger.Debug(ctx, "Redis pattern delete completed", "pattern", pattern, "deleted", deleted, "batch_size", batchSize)
	return deleted, nil
}

// Ping checks connectivity, used by the readiness probe.
func (a *CacheBackendAdapter) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()
	return a.redisClient.Ping(opCtx).Err()
}
