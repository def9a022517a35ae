package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const latencySamples = 1000

// Metrics tracks dispatcher activity.
type Metrics struct {
	// Event counters
	keyEvents       atomic.Uint64
	suppressed      atomic.Uint64
	chordsStarted   atomic.Uint64
	chordsCompleted atomic.Uint64
	chordsAborted   atomic.Uint64
	chordTimeouts   atomic.Uint64
	actionsFired    atomic.Uint64
	actionErrors    atomic.Uint64
	unhandled       atomic.Uint64
	queued          atomic.Uint64

	// Latency ring buffer
	mu         sync.Mutex
	latencies  []time.Duration
	latencyIdx int
	peak       atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, latencySamples),
		startTime: time.Now(),
	}
}

func (m *Metrics) recordDispatch(latency time.Duration) {
	m.keyEvents.Add(1)

	ns := latency.Nanoseconds()
	for {
		current := m.peak.Load()
		if ns <= current || m.peak.CompareAndSwap(current, ns) {
			break
		}
	}

	m.mu.Lock()
	m.latencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % latencySamples
	m.mu.Unlock()
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeyEvents       uint64
	Suppressed      uint64
	ChordsStarted   uint64
	ChordsCompleted uint64
	ChordsAborted   uint64
	ChordTimeouts   uint64
	ActionsFired    uint64
	ActionErrors    uint64
	Unhandled       uint64
	Queued          uint64

	AvgLatency  time.Duration
	MaxLatency  time.Duration
	P99Latency  time.Duration
	PeakLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	latencies := slices.Clone(m.latencies)
	start := m.startTime
	m.mu.Unlock()

	snap := MetricsSnapshot{
		KeyEvents:       m.keyEvents.Load(),
		Suppressed:      m.suppressed.Load(),
		ChordsStarted:   m.chordsStarted.Load(),
		ChordsCompleted: m.chordsCompleted.Load(),
		ChordsAborted:   m.chordsAborted.Load(),
		ChordTimeouts:   m.chordTimeouts.Load(),
		ActionsFired:    m.actionsFired.Load(),
		ActionErrors:    m.actionErrors.Load(),
		Unhandled:       m.unhandled.Load(),
		Queued:          m.queued.Load(),
		PeakLatency:     time.Duration(m.peak.Load()),
		Uptime:          time.Since(start),
	}
	snap.AvgLatency, snap.MaxLatency, snap.P99Latency = latencyStats(latencies)
	return snap
}

// latencyStats computes average, max and p99 over the recorded samples.
func latencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := slices.DeleteFunc(latencies, func(l time.Duration) bool { return l <= 0 })
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]

	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	return avg, maxLat, valid[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Uint64{
		&m.keyEvents, &m.suppressed, &m.chordsStarted, &m.chordsCompleted,
		&m.chordsAborted, &m.chordTimeouts, &m.actionsFired, &m.actionErrors, &m.unhandled, &m.queued,
	} {
		c.Store(0)
	}
	m.peak.Store(0)

	m.mu.Lock()
	m.latencies = make([]time.Duration, latencySamples)
	m.latencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}
