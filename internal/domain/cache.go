package domain

import (
	"context"
	"time"
)

// CacheStatus classifies the outcome of a backing-store lookup.
type CacheStatus int

const (
	CacheMiss CacheStatus = iota
	CacheHit
	CacheError
)

func (s CacheStatus) String() string {
	switch s {
	case CacheHit:
		return "hit"
	case CacheError:
		return "error"
	default:
		return "miss"
	}
}

// CacheLookup is the explicit result of a backing-store GET. Value is set only on
// CacheHit and Err only on CacheError.
type CacheLookup struct {
	Status CacheStatus
	Value  []byte
	Err    error
}

// CacheBackend is the remote key-value store behind the cache-aside layer.
// Keys passed in are already composite ("namespace:key").
type CacheBackend interface {
	Get(ctx context.Context, key string) CacheLookup
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching pattern server-side, deleting in
	// batches of at most batchSize keys, and returns the number of keys removed.
	DeletePattern(ctx context.Context, pattern string, batchSize int) (int64, error)
	Ping(ctx context.Context) error
}
