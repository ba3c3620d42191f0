package application

import (
	"context"
	"encoding/json"
	"time"

	"gitlab.com/timkado/api/game-catalog-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
	"gitlab.com/timkado/api/game-catalog-service/pkg/rediskeys"
)

// DefaultEvictBatchSize bounds how many keys one DEL removes during EvictAll.
const DefaultEvictBatchSize = 5000

// CacheAsideStore is a fail-open JSON cache over a domain.CacheBackend. No method
// returns an error: backend failures and undecodable entries are logged and
// behave as a miss or a no-op.
type CacheAsideStore struct {
	backend        domain.CacheBackend
	logger         domain.Logger
	evictBatchSize int
}

// NewCacheAsideStore creates a new CacheAsideStore.
func NewCacheAsideStore(backend domain.CacheBackend, logger domain.Logger, evictBatchSize int) *CacheAsideStore {
	if evictBatchSize <= 0 {
		evictBatchSize = DefaultEvictBatchSize
	}
	return &CacheAsideStore{
		backend:        backend,
		logger:         logger,
		evictBatchSize: evictBatchSize,
	}
}

// Get decodes the entry namespace:key into dest and reports whether it was found.
// dest must be a non-nil pointer. Its contents are undefined when false is returned.
func (s *CacheAsideStore) Get(ctx context.Context, namespace, key string, dest any) bool {
	cacheKey := rediskeys.CacheKey(namespace, key)
	lookup := s.backend.Get(ctx, cacheKey)

	switch lookup.Status {
	case domain.CacheHit:
		if err := json.Unmarshal(lookup.Value, dest); err != nil {
			s.logger.Warn(ctx, "Discarding undecodable cache entry", "key", cacheKey, "error", err)
			metrics.ObserveCacheOperation(namespace, "get", "decode_error")
			return false
		}
		s.logger.Debug(ctx, "Cache hit", "key", cacheKey)
		metrics.ObserveCacheOperation(namespace, "get", "hit")
		return true
	case domain.CacheError:
		s.logger.Error(ctx, "Cache lookup failed, falling back to source", "key", cacheKey, "error", lookup.Err)
		metrics.ObserveCacheOperation(namespace, "get", "error")
		return false
	default:
		s.logger.Debug(ctx, "Cache miss", "key", cacheKey)
		metrics.ObserveCacheOperation(namespace, "get", "miss")
		return false
	}
}

// Put stores value as JSON under namespace:key for ttl. Failures are swallowed.
func (s *CacheAsideStore) Put(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	cacheKey := rediskeys.CacheKey(namespace, key)

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn(ctx, "Skipping cache write for unencodable value", "key", cacheKey, "error", err)
		metrics.ObserveCacheOperation(namespace, "put", "encode_error")
		return
	}

	if err := s.backend.Set(ctx, cacheKey, data, ttl); err != nil {
		s.logger.Error(ctx, "Cache write failed", "key", cacheKey, "error", err)
		metrics.ObserveCacheOperation(namespace, "put", "error")
		return
	}
	metrics.ObserveCacheOperation(namespace, "put", "ok")
}

// Evict deletes namespace:key. Failures are swallowed; the entry still expires by TTL.
func (s *CacheAsideStore) Evict(ctx context.Context, namespace, key string) {
	cacheKey := rediskeys.CacheKey(namespace, key)
	if err := s.backend.Delete(ctx, cacheKey); err != nil {
		s.logger.Error(ctx, "Cache eviction failed", "key", cacheKey, "error", err)
		metrics.ObserveCacheOperation(namespace, "evict", "error")
		return
	}
	metrics.ObserveCacheOperation(namespace, "evict", "ok")
}

// EvictAll deletes every entry of namespace in bounded batches. Failures are swallowed.
func (s *CacheAsideStore) EvictAll(ctx context.Context, namespace string) {
	pattern := rediskeys.NamespacePattern(namespace)
	n, err := s.backend.DeletePattern(ctx, pattern, s.evictBatchSize)
	if err != nil {
		s.logger.Error(ctx, "Cache namespace eviction failed", "pattern", pattern, "error", err)
		metrics.ObserveCacheOperation(namespace, "evict_all", "error")
		return
	}
	s.logger.Info(ctx, "Cache namespace evicted", "namespace", namespace, "keys_removed", n)
	metrics.ObserveCacheOperation(namespace, "evict_all", "ok")
	metrics.AddEvictedKeys(namespace, n)
}

// Namespace is a typed view of one cache namespace with a fixed TTL.
type Namespace[T any] struct {
	store *CacheAsideStore
	name  string
	ttl   time.Duration
}

// NewNamespace binds a namespace name and TTL to store.
func NewNamespace[T any](store *CacheAsideStore, name string, ttl time.Duration) Namespace[T] {
	return Namespace[T]{store: store, name: name, ttl: ttl}
}

// Name returns the namespace name.
func (n Namespace[T]) Name() string { return n.name }

// Get returns the cached value for key, or the zero value and false when absent.
func (n Namespace[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	if !n.store.Get(ctx, n.name, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

func (n Namespace[T]) Put(ctx context.Context, key string, value T) {
	n.store.Put(ctx, n.name, key, value, n.ttl)
}

func (n Namespace[T]) Evict(ctx context.Context, key string) {
	n.store.Evict(ctx, n.name, key)
}

func (n Namespace[T]) EvictAll(ctx context.Context) {
	n.store.EvictAll(ctx, n.name)
}
