package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// MockLogger implements domain.Logger and records every entry for assertions
type MockLogger struct {
	logEntries *[]LogEntry
	mu         *sync.RWMutex
	fields     []any

	// Metrics
	InfoCount  *int64
	WarnCount  *int64
	ErrorCount *int64
	DebugCount *int64
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     string
	Message   string
	Fields    map[string]any
	Timestamp time.Time
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	entries := make([]LogEntry, 0)
	return &MockLogger{
		logEntries: &entries,
		mu:         &sync.RWMutex{},
		InfoCount:  new(int64),
		WarnCount:  new(int64),
		ErrorCount: new(int64),
		DebugCount: new(int64),
	}
}

// Info implements domain.Logger
func (m *MockLogger) Info(ctx context.Context, msg string, fields ...any) {
	atomic.AddInt64(m.InfoCount, 1)
	m.addLogEntry("INFO", msg, fields...)
}

// Warn implements domain.Logger
func (m *MockLogger) Warn(ctx context.Context, msg string, fields ...any) {
	atomic.AddInt64(m.WarnCount, 1)
	m.addLogEntry("WARN", msg, fields...)
}

// Error implements domain.Logger
func (m *MockLogger) Error(ctx context.Context, msg string, fields ...any) {
	atomic.AddInt64(m.ErrorCount, 1)
	m.addLogEntry("ERROR", msg, fields...)
}

// Debug implements domain.Logger
func (m *MockLogger) Debug(ctx context.Context, msg string, fields ...any) {
	atomic.AddInt64(m.DebugCount, 1)
	m.addLogEntry("DEBUG", msg, fields...)
}

// Fatal implements domain.Logger. It records the entry but never exits.
func (m *MockLogger) Fatal(ctx context.Context, msg string, fields ...any) {
	atomic.AddInt64(m.ErrorCount, 1)
	m.addLogEntry("FATAL", msg, fields...)
}

// With implements domain.Logger. The child shares the entry log and counters of its parent.
func (m *MockLogger) With(fields ...any) domain.Logger {
	child := *m
	child.fields = append(append([]any{}, m.fields...), fields...)
	return &child
}

func (m *MockLogger) addLogEntry(level, msg string, fields ...any) {
	all := append(append([]any{}, m.fields...), fields...)
	fieldMap := make(map[string]any)
	for i := 0; i+1 < len(all); i += 2 {
		if key, ok := all[i].(string); ok {
			fieldMap[key] = all[i+1]
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	*m.logEntries = append(*m.logEntries, LogEntry{
		Level:     level,
		Message:   msg,
		Fields:    fieldMap,
		Timestamp: time.Now(),
	})
}

// GetLogEntries returns all log entries for testing
func (m *MockLogger) GetLogEntries() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]LogEntry, len(*m.logEntries))
	copy(entries, *m.logEntries)
	return entries
}

// GetLogEntriesByLevel returns log entries filtered by level
func (m *MockLogger) GetLogEntriesByLevel(level string) []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []LogEntry
	for _, entry := range *m.logEntries {
		if entry.Level == level {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// GetMetrics returns current counters
func (m *MockLogger) GetMetrics() (info, warn, errors, debug int64) {
	return atomic.LoadInt64(m.InfoCount),
		atomic.LoadInt64(m.WarnCount),
		atomic.LoadInt64(m.ErrorCount),
		atomic.LoadInt64(m.DebugCount)
}

// Reset clears all log entries and metrics
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	*m.logEntries = (*m.logEntries)[:0]
	atomic.StoreInt64(m.InfoCount, 0)
	atomic.StoreInt64(m.WarnCount, 0)
	atomic.StoreInt64(m.ErrorCount, 0)
	atomic.StoreInt64(m.DebugCount, 0)
}
