package qreg

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	RequestCount    int64
	ActionCounts    map[Action]int64
	CauseCounts     map[Cause]int64
	UnmatchedInputs int64
	RecoveredFaults int64
	RateLimitHits   int64
	BreakerState    CircuitState

	TotalLatency   time.Duration
	AverageLatency time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	latencies      []time.Duration
	windowSize     int
}

func NewMetrics() *Metrics {
	return &Metrics{
		ActionCounts: make(map[Action]int64),
		CauseCounts:  make(map[Cause]int64),
		latencies:    make([]time.Duration, 0, 1000), // Store last 1000 measurements
		windowSize:   1000,
	}
}

// RecordRequest accounts for one handled request.
func (m *Metrics) RecordRequest(action Action, cause Cause, matched bool, startTime time.Time) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestCount++
	m.ActionCounts[action]++
	m.CauseCounts[cause]++
	if !matched {
		m.UnmatchedInputs++
	}
	if cause == CauseRecovered {
		m.RecoveredFaults++
	}

	m.TotalLatency += duration
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) RecordRateLimitHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitHits++
}

func (m *Metrics) SetBreakerState(state CircuitState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BreakerState = state
}

// Caller holds m.mu.
func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageLatency = m.TotalLatency / time.Duration(m.RequestCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := int(float64(len(sorted)) * 0.95)
		p99Index := int(float64(len(sorted)) * 0.99)

		if p95Index >= len(sorted) {
			p95Index = len(sorted) - 1
		}
		if p99Index >= len(sorted) {
			p99Index = len(sorted) - 1
		}

		m.P95Latency = sorted[p95Index]
		m.P99Latency = sorted[p99Index]
	}
}

func (m *Metrics) Export() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make(map[string]int64, len(m.ActionCounts))
	for a, n := range m.ActionCounts {
		actions[string(a)] = n
	}
	causes := make(map[string]int64, len(m.CauseCounts))
	for c, n := range m.CauseCounts {
		causes[string(c)] = n
	}

	return map[string]interface{}{
		"requests":         m.RequestCount,
		"actions":          actions,
		"causes":           causes,
		"unmatched_inputs": m.UnmatchedInputs,
		"recovered_faults": m.RecoveredFaults,
		"rate_limit_hits":  m.RateLimitHits,
		"breaker_state":    m.BreakerState.String(),
		"avg_latency_us":   m.AverageLatency.Microseconds(),
		"p95_latency_us":   m.P95Latency.Microseconds(),
		"p99_latency_us":   m.P99Latency.Microseconds(),
	}
}
