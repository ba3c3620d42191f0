package mocks

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// ErrCacheUnavailable is returned by MockCacheBackend while Unavailable is set.
var ErrCacheUnavailable = errors.New("mock cache backend unavailable")

// MockCacheBackend implements domain.CacheBackend in memory with per-entry TTL.
// Setting Unavailable makes every call fail as if the backing store were unreachable.
type MockCacheBackend struct {
	entries map[string]cacheEntry
	deleted []string
	mu      sync.Mutex
	now     func() time.Time

	Unavailable atomic.Bool

	// Metrics
	GetCalls    int64
	SetCalls    int64
	DeleteCalls int64
	PatternDels int64
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMockCacheBackend creates an empty in-memory cache backend
func NewMockCacheBackend() *MockCacheBackend {
	return &MockCacheBackend{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// SetClock overrides the wall clock used for TTL checks.
func (m *MockCacheBackend) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements domain.CacheBackend
func (m *MockCacheBackend) Get(ctx context.Context, key string) domain.CacheLookup {
	atomic.AddInt64(&m.GetCalls, 1)
	if m.Unavailable.Load() {
		return domain.CacheLookup{Status: domain.CacheError, Err: ErrCacheUnavailable}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return domain.CacheLookup{Status: domain.CacheMiss}
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return domain.CacheLookup{Status: domain.CacheMiss}
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return domain.CacheLookup{Status: domain.CacheHit, Value: value}
}

// Set implements domain.CacheBackend
func (m *MockCacheBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	atomic.AddInt64(&m.SetCalls, 1)
	if m.Unavailable.Load() {
		return ErrCacheUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	entry := cacheEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Delete implements domain.CacheBackend. Every requested key is recorded, present or not.
func (m *MockCacheBackend) Delete(ctx context.Context, keys ...string) error {
	atomic.AddInt64(&m.DeleteCalls, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, keys...)
	if m.Unavailable.Load() {
		return ErrCacheUnavailable
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// DeletePattern implements domain.CacheBackend using glob matching.
func (m *MockCacheBackend) DeletePattern(ctx context.Context, pattern string, batchSize int) (int64, error) {
	atomic.AddInt64(&m.PatternDels, 1)
	if m.Unavailable.Load() {
		return 0, ErrCacheUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k := range m.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Ping implements domain.CacheBackend
func (m *MockCacheBackend) Ping(ctx context.Context) error {
	if m.Unavailable.Load() {
		return ErrCacheUnavailable
	}
	return nil
}

// Has reports whether key is currently stored and unexpired.
func (m *MockCacheBackend) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return false
	}
	return entry.expiresAt.IsZero() || m.now().Before(entry.expiresAt)
}

// Put stores a raw value without TTL, bypassing failure injection.
func (m *MockCacheBackend) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{value: value}
}

// DeletedKeys returns every key passed to Delete, in call order.
func (m *MockCacheBackend) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Len returns the number of stored entries, expired ones included.
func (m *MockCacheBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
