package mtredis

import (
	"sync/atomic"
	"time"
)

// MetricID names one storage counter or histogram.
type MetricID uint16

const (
	// MetricFieldRead counts session field reads.
	MetricFieldRead MetricID = iota
	// MetricFieldWrite counts session field writes.
	MetricFieldWrite
	// MetricFieldDelete counts session field deletions.
	MetricFieldDelete
	// MetricStateRead counts update-state point reads and full listings.
	MetricStateRead
	// MetricStateWrite counts update-state writes.
	MetricStateWrite
	// MetricStateDelete counts update-state deletions.
	MetricStateDelete
	// MetricPeersUpserted counts peer records written.
	MetricPeersUpserted
	// MetricPointersWritten counts username and phone pointers written.
	MetricPointersWritten
	// MetricPeerLookup counts peer lookups by id, username or phone number.
	MetricPeerLookup
	// MetricPeerNotFound counts lookups that ended in ErrPeerNotFound.
	MetricPeerNotFound
	// MetricDecodeFailure counts stored values that failed to decode.
	MetricDecodeFailure
	// MetricSessionOpened counts successful Open calls.
	MetricSessionOpened
	// MetricSessionClosed counts successful Close calls.
	MetricSessionClosed
	// MetricSessionDeleted counts Delete calls.
	MetricSessionDeleted
	// MetricVersionRejected counts Open calls refused by the version gate.
	MetricVersionRejected
	// MetricRoundTripLatency is the Redis round-trip latency histogram.
	MetricRoundTripLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free storage counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to the counter id.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records one latency sample. Only MetricRoundTripLatency is a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricRoundTripLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRoundTripLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRoundTripLatency].buckets[i])
		}
		s.Histograms[MetricRoundTripLatency] = buckets
	}

	return s
}

// bucket upper bounds: 1ms, 2ms, 5ms, 10ms, 25ms, 50ms, 100ms, +Inf
func bucketIndex(d time.Duration) int {
	switch {
	case d <= time.Millisecond:
		return 0
	case d <= 2*time.Millisecond:
		return 1
	case d <= 5*time.Millisecond:
		return 2
	case d <= 10*time.Millisecond:
		return 3
	case d <= 25*time.Millisecond:
		return 4
	case d <= 50*time.Millisecond:
		return 5
	case d <= 100*time.Millisecond:
		return 6
	default:
		return 7
	}
}
