package simulator

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sibexico/HexPager/paging"
)

// Histogram tracks latency distribution with percentile support.
// It keeps the most recent maxSize samples in a ring.
type Histogram struct {
	mu     sync.Mutex
	ring   []float64 // Latencies in microseconds
	next   int       // Slot the next sample overwrites
	count  int       // Retained samples, at most len(ring)
	sorted []float64 // Sorted copy of the retained samples, nil when stale
}

// NewHistogram creates a new histogram with a max sample size
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Histogram{
		ring: make([]float64, maxSize),
	}
}

// Record adds a latency sample (in microseconds). At capacity the oldest
// sample is overwritten.
func (h *Histogram) Record(latencyUs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ring[h.next] = latencyUs
	h.next = (h.next + 1) % len(h.ring)
	if h.count < len(h.ring) {
		h.count++
	}
	h.sorted = nil
}

// retained returns the live samples; caller holds mu
func (h *Histogram) retained() []float64 {
	return h.ring[:h.count]
}

// Percentile calculates the given percentile (0-100)
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return 0
	}

	if h.sorted == nil {
		h.sorted = append(make([]float64, 0, h.count), h.retained()...)
		sort.Float64s(h.sorted)
	}

	rank := (p / 100.0) * float64(len(h.sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return h.sorted[lower]
	}

	// Linear interpolation between lower and upper
	weight := rank - float64(lower)
	return h.sorted[lower]*(1-weight) + h.sorted[upper]*weight
}

// Mean calculates the average latency
func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range h.retained() {
		sum += v
	}
	return sum / float64(h.count)
}

// Min returns the minimum latency
func (h *Histogram) Min() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	min := 0.0
	for i, v := range h.retained() {
		if i == 0 || v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum latency
func (h *Histogram) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	max := 0.0
	for i, v := range h.retained() {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// Count returns the number of samples
func (h *Histogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Reset clears all samples
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.count = 0
	h.sorted = nil
}

// HistogramSnapshot holds current percentile statistics
type HistogramSnapshot struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
}

// Snapshot captures current histogram statistics
func (h *Histogram) Snapshot() HistogramSnapshot {
	return HistogramSnapshot{
		Count: h.Count(),
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
	}
}

// Metrics tracks simulator run metrics. It is a paging.EventSink.
type Metrics struct {
	hits        atomic.Uint64
	faults      atomic.Uint64
	loads       atomic.Uint64
	swapOuts    atomic.Uint64
	invalidRefs atomic.Uint64

	stepLatency *Histogram // Engine step latency (microseconds)

	startTime time.Time
	mu        sync.RWMutex
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		stepLatency: NewHistogram(10000),
	}
}

// HandleEvent counts engine events
func (m *Metrics) HandleEvent(ev paging.Event) {
	switch ev.Kind {
	case paging.EventHit:
		m.hits.Add(1)
	case paging.EventFault:
		m.faults.Add(1)
	case paging.EventLoaded:
		m.loads.Add(1)
	case paging.EventSwapOut:
		m.swapOuts.Add(1)
	}
}

func (m *Metrics) RecordInvalidReference() {
	m.invalidRefs.Add(1)
}

// RecordStepLatency records how long the engine took to resolve a reference
func (m *Metrics) RecordStepLatency(duration time.Duration) {
	m.stepLatency.Record(float64(duration.Nanoseconds()) / 1000.0)
}

// Getters

func (m *Metrics) GetHits() uint64 {
	return m.hits.Load()
}

func (m *Metrics) GetFaults() uint64 {
	return m.faults.Load()
}

func (m *Metrics) GetLoads() uint64 {
	return m.loads.Load()
}

func (m *Metrics) GetSwapOuts() uint64 {
	return m.swapOuts.Load()
}

func (m *Metrics) GetInvalidReferences() uint64 {
	return m.invalidRefs.Load()
}

func (m *Metrics) GetHitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.faults.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

func (m *Metrics) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.startTime)
}

// GetStepLatency returns snapshot of step latency distribution
func (m *Metrics) GetStepLatency() HistogramSnapshot {
	return m.stepLatency.Snapshot()
}

// LogMetrics logs all metrics using structured logging
func (m *Metrics) LogMetrics(logger *slog.Logger) {
	step := m.GetStepLatency()

	logger.Info("Simulation Metrics",
		slog.Group("references",
			slog.Uint64("hits", m.GetHits()),
			slog.Uint64("faults", m.GetFaults()),
			slog.Float64("hit_rate", m.GetHitRate()),
			slog.Uint64("invalid", m.GetInvalidReferences()),
		),
		slog.Group("frames",
			slog.Uint64("loads", m.GetLoads()),
			slog.Uint64("swap_outs", m.GetSwapOuts()),
		),
		slog.Group("latency_us",
			slog.Group("step",
				slog.Int("count", step.Count),
				slog.Float64("min", step.Min),
				slog.Float64("mean", step.Mean),
				slog.Float64("p50", step.P50),
				slog.Float64("p99", step.P99),
				slog.Float64("max", step.Max),
			),
		),
		slog.Duration("uptime", m.GetUptime()),
	)
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.hits.Store(0)
	m.faults.Store(0)
	m.loads.Store(0)
	m.swapOuts.Store(0)
	m.invalidRefs.Store(0)
	m.stepLatency.Reset()

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}
