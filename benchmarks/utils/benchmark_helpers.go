package utils

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// BenchmarkRunner tracks operations, errors, memory and goroutines across a run
type BenchmarkRunner struct {
	startTime      time.Time
	endTime        time.Time
	memStatsStart  runtime.MemStats
	memStatsEnd    runtime.MemStats
	goroutineStart int
	goroutineEnd   int

	operationCount int64
	errorCount     int64

	mu sync.RWMutex
}

// NewBenchmarkRunner creates a new benchmark runner
func NewBenchmarkRunner() *BenchmarkRunner {
	return &BenchmarkRunner{}
}

// Start begins the benchmark measurement
func (br *BenchmarkRunner) Start() {
	br.mu.Lock()
	defer br.mu.Unlock()

	br.startTime = time.Now()
	br.goroutineStart = runtime.NumGoroutine()
	runtime.ReadMemStats(&br.memStatsStart)
}

// Stop ends the benchmark measurement
func (br *BenchmarkRunner) Stop() {
	br.mu.Lock()
	defer br.mu.Unlock()

	br.endTime = time.Now()
	br.goroutineEnd = runtime.NumGoroutine()
	runtime.ReadMemStats(&br.memStatsEnd)
}

// IncrementOperations increments the operation counter
func (br *BenchmarkRunner) IncrementOperations(count int64) {
	atomic.AddInt64(&br.operationCount, count)
}

// IncrementErrors increments the error counter
func (br *BenchmarkRunner) IncrementErrors(count int64) {
	atomic.AddInt64(&br.errorCount, count)
}

// GetResults returns the benchmark results
func (br *BenchmarkRunner) GetResults() *BenchmarkResults {
	br.mu.RLock()
	defer br.mu.RUnlock()

	duration := br.endTime.Sub(br.startTime)
	operations := atomic.LoadInt64(&br.operationCount)

	var opsPerSecond float64
	if duration.Seconds() > 0 {
		opsPerSecond = float64(operations) / duration.Seconds()
	}

	return &BenchmarkResults{
		Duration:            duration,
		Operations:          operations,
		Errors:              atomic.LoadInt64(&br.errorCount),
		OperationsPerSecond: opsPerSecond,
		MemoryAllocated:     br.memStatsEnd.TotalAlloc - br.memStatsStart.TotalAlloc,
		GoroutineLeak:       br.goroutineEnd - br.goroutineStart,
	}
}

// BenchmarkResults holds the results of a benchmark run
type BenchmarkResults struct {
	Duration            time.Duration `json:"duration_ns"`
	Operations          int64         `json:"operations"`
	Errors              int64         `json:"errors"`
	OperationsPerSecond float64       `json:"operations_per_second"`
	MemoryAllocated     uint64        `json:"memory_allocated_bytes"`
	GoroutineLeak       int           `json:"goroutine_leak"`
}

// String returns a human-readable representation of the results
func (br *BenchmarkResults) String() string {
	return fmt.Sprintf(
		"Duration: %v, Ops: %d, Errors: %d, Ops/sec: %.2f, Memory: %d bytes, Goroutine leak: %d",
		br.Duration, br.Operations, br.Errors, br.OperationsPerSecond, br.MemoryAllocated, br.GoroutineLeak,
	)
}

// CatalogMetrics tracks service-level outcomes observed by a benchmark
type CatalogMetrics struct {
	CacheHits     int64
	CacheMisses   int64
	RepoReads     int64
	AuthSuccesses int64
	AuthFailures  int64
}

// UpdateCacheMetrics records read-through outcomes
func (cm *CatalogMetrics) UpdateCacheMetrics(hits, misses int64) {
	atomic.AddInt64(&cm.CacheHits, hits)
	atomic.AddInt64(&cm.CacheMisses, misses)
}

// UpdateAuthMetrics updates authentication-related metrics
func (cm *CatalogMetrics) UpdateAuthMetrics(successes, failures int64) {
	atomic.AddInt64(&cm.AuthSuccesses, successes)
	atomic.AddInt64(&cm.AuthFailures, failures)
}

// HitRatio returns the fraction of reads served from cache.
func (cm *CatalogMetrics) HitRatio() float64 {
	hits := atomic.LoadInt64(&cm.CacheHits)
	total := hits + atomic.LoadInt64(&cm.CacheMisses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// GameGenerator creates valid catalog items spread over a fixed set of categories
type GameGenerator struct {
	counter    int64
	categories []string
}

// NewGameGenerator creates a generator cycling through categories.
func NewGameGenerator(categories ...string) *GameGenerator {
	if len(categories) == 0 {
		categories = []string{"RPG", "Strategy", "Puzzle", "Platformer", "Racing"}
	}
	return &GameGenerator{categories: categories}
}

// Next returns a new unsaved game (ID 0).
func (gg *GameGenerator) Next() domain.Game {
	n := atomic.AddInt64(&gg.counter, 1)
	return domain.Game{
		Name:        fmt.Sprintf("Benchmark Game %05d", n),
		Description: fmt.Sprintf("Generated catalog entry number %d for load tests.", n),
		Category:    gg.categories[int(n)%len(gg.categories)],
		Price:       5 + float64(n%50),
		URL:         fmt.Sprintf("https://example.com/games/%d", n),
	}
}

// Seed returns count games with ids 1..count.
func (gg *GameGenerator) Seed(count int) []domain.Game {
	games := make([]domain.Game, count)
	for i := range games {
		games[i] = gg.Next()
		games[i].ID = int64(i + 1)
	}
	return games
}

// ConcurrentTestRunner manages concurrent load testing
type ConcurrentTestRunner struct {
	workerCount int
	duration    time.Duration
	results     chan *BenchmarkResults
	stopSignal  chan struct{}
}

// NewConcurrentTestRunner creates a new concurrent test runner
func NewConcurrentTestRunner(workerCount int, duration time.Duration) *ConcurrentTestRunner {
	return &ConcurrentTestRunner{
		workerCount: workerCount,
		duration:    duration,
		results:     make(chan *BenchmarkResults, workerCount),
		stopSignal:  make(chan struct{}),
	}
}

// RunTest executes a concurrent test with the provided worker function
func (ctr *ConcurrentTestRunner) RunTest(workerFunc func(workerID int, stopSignal <-chan struct{}) *BenchmarkResults) []*BenchmarkResults {
	var wg sync.WaitGroup

	for i := 0; i < ctr.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if result := workerFunc(workerID, ctr.stopSignal); result != nil {
				ctr.results <- result
			}
		}(i)
	}

	// Stop workers after duration
	go func() {
		time.Sleep(ctr.duration)
		close(ctr.stopSignal)
	}()

	wg.Wait()
	close(ctr.results)

	var results []*BenchmarkResults
	for result := range ctr.results {
		results = append(results, result)
	}
	return results
}
