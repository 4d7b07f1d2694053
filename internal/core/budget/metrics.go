// Package-level metrics collection for observability.
package budget

import (
	"sync"
	"time"
)

// Metrics collects allocator metrics for monitoring. Recording is
// fire-and-forget; implementations must never fail or block packing.
type Metrics interface {
	// RecordOptimization records one completed packing run with the
	// original and packed token totals and the wall-clock duration.
	RecordOptimization(originalTokens, packedTokens int, duration time.Duration)
	// RecordFieldAction records the terminal decision for one field.
	RecordFieldAction(action Action)
	// RecordFallback records a run that ended in the minimal result.
	RecordFallback()
	// Snapshot returns the current metrics snapshot.
	Snapshot() MetricsSnapshot
	// Reset clears all metrics (useful for testing).
	Reset()
}

// MetricsSnapshot contains a point-in-time view of collected metrics.
type MetricsSnapshot struct {
	Optimizations    int64
	OriginalTokens   int64
	PackedTokens     int64
	TotalTime        time.Duration
	FieldActions     map[string]int64 // action -> count
	Fallbacks        int64
	LastOptimization time.Time
}

// CompressionRatio reports packed versus original token volume across all
// recorded runs. Zero original volume yields zero.
func (s MetricsSnapshot) CompressionRatio() float64 {
	if s.OriginalTokens == 0 {
		return 0
	}
	return float64(s.PackedTokens) / float64(s.OriginalTokens)
}

// NoOpMetrics discards all metrics.
type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordOptimization(_, _ int, _ time.Duration) {}
func (n *NoOpMetrics) RecordFieldAction(_ Action)                   {}
func (n *NoOpMetrics) RecordFallback()                              {}
func (n *NoOpMetrics) Snapshot() MetricsSnapshot                    { return MetricsSnapshot{} }
func (n *NoOpMetrics) Reset()                                       {}

// InMemoryMetrics is a thread-safe in-memory metrics collector.
type InMemoryMetrics struct {
	mu               sync.RWMutex
	optimizations    int64
	originalTokens   int64
	packedTokens     int64
	totalTime        time.Duration
	fieldActions     map[string]int64
	fallbacks        int64
	lastOptimization time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{fieldActions: make(map[string]int64)}
}

func (m *InMemoryMetrics) RecordOptimization(originalTokens, packedTokens int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizations++
	m.originalTokens += int64(originalTokens)
	m.packedTokens += int64(packedTokens)
	m.totalTime += duration
	m.lastOptimization = time.Now()
}

func (m *InMemoryMetrics) RecordFieldAction(action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fieldActions[string(action)]++
}

func (m *InMemoryMetrics) RecordFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		Optimizations:    m.optimizations,
		OriginalTokens:   m.originalTokens,
		PackedTokens:     m.packedTokens,
		TotalTime:        m.totalTime,
		FieldActions:     make(map[string]int64, len(m.fieldActions)),
		Fallbacks:        m.fallbacks,
		LastOptimization: m.lastOptimization,
	}
	for action, count := range m.fieldActions {
		snapshot.FieldActions[action] = count
	}
	return snapshot
}

func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizations = 0
	m.originalTokens = 0
	m.packedTokens = 0
	m.totalTime = 0
	m.fieldActions = make(map[string]int64)
	m.fallbacks = 0
	m.lastOptimization = time.Time{}
}
