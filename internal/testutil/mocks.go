package testutil

import (
	"fmt"
	"sync"
	"time"
	"zoblogs/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasLevel reports whether anything was logged at level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Logs {
		if l.Level == level {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu            sync.Mutex
	CacheHits     int
	CacheMisses   int
	Upstream      map[string]int
	UpstreamFails map[string]int
	RegistryCoins int
	Trades        map[string]int // key: "direction:outcome"
}

func (m *MockMetrics) IncRequestsTotal(string, int)                {}
func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObserveUpstream(operation string, failed bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Upstream == nil {
		m.Upstream = make(map[string]int)
		m.UpstreamFails = make(map[string]int)
	}
	m.Upstream[operation]++
	if failed {
		m.UpstreamFails[operation]++
	}
}

func (m *MockMetrics) SetRegistryCoins(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegistryCoins = count
}

func (m *MockMetrics) IncTrades(direction, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Trades == nil {
		m.Trades = make(map[string]int)
	}
	m.Trades[direction+":"+outcome]++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	Gen  uint64
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gen++
	delete(m.Data, key)
}

func (m *MockCache) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gen
}

func (m *MockCache) SetIfGeneration(key string, value []byte, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.Gen {
		return false
	}
	m.Data[key] = value
	return true
}
