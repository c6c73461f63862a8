package spiflashcb

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the worker-stage latency histogram buckets in
// nanoseconds, covering 1us to 10s with logarithmic spacing. Each Worker
// call is expected to be cheap (O(header_size) plus one packet assembly),
// so the low end of this histogram is where the interesting data lives.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks operational statistics for a Driver.
type Metrics struct {
	AppendOps   atomic.Uint64 // completed add/add_append/add_done records
	AppendBytes atomic.Uint64
	ScanOps     atomic.Uint64 // completed mkcb runs
	ReclaimOps  atomic.Uint64 // sectors erased by reclamation
	ReadOps     atomic.Uint64 // get_last + flash_read completions
	ReadBytes   atomic.Uint64
	ErrorOps    atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
}

// NewMetrics creates a new metrics instance with its clock started.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// RecordAppend records one completed record append (header+payload+footer).
func (m *Metrics) RecordAppend(bytes uint64, latencyNs uint64) {
	m.AppendOps.Add(1)
	m.AppendBytes.Add(bytes)
	m.recordLatency(latencyNs)
}

// RecordScan records one completed mkcb run over a queue.
func (m *Metrics) RecordScan(latencyNs uint64) {
	m.ScanOps.Add(1)
	m.recordLatency(latencyNs)
}

// RecordReclaim records one sector erased by reclamation.
func (m *Metrics) RecordReclaim() {
	m.ReclaimOps.Add(1)
}

// RecordRead records one completed get_last or flash_read.
func (m *Metrics) RecordRead(bytes uint64, latencyNs uint64) {
	m.ReadOps.Add(1)
	m.ReadBytes.Add(bytes)
	m.recordLatency(latencyNs)
}

// RecordError records one worker-latched or submission error.
func (m *Metrics) RecordError() {
	m.ErrorOps.Add(1)
}

// MetricsSnapshot is a point-in-time copy of Metrics, safe to read without
// further synchronization.
type MetricsSnapshot struct {
	AppendOps   uint64
	AppendBytes uint64
	ScanOps     uint64
	ReclaimOps  uint64
	ReadOps     uint64
	ReadBytes   uint64
	ErrorOps    uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns uint64
	LatencyP99Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64
}

// Snapshot returns a consistent-enough point-in-time view of m.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		AppendOps:   m.AppendOps.Load(),
		AppendBytes: m.AppendBytes.Load(),
		ScanOps:     m.ScanOps.Load(),
		ReclaimOps:  m.ReclaimOps.Load(),
		ReadOps:     m.ReadOps.Load(),
		ReadBytes:   m.ReadBytes.Load(),
		ErrorOps:    m.ErrorOps.Load(),
	}

	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = m.TotalLatencyNs.Load() / opCount
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
	}
	snap.UptimeNs = uint64(time.Now().UnixNano() - m.StartTime.Load())

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}
	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}
	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}
	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes all counters, restarting the uptime clock.
func (m *Metrics) Reset() {
	m.AppendOps.Store(0)
	m.AppendBytes.Store(0)
	m.ScanOps.Store(0)
	m.ReclaimOps.Store(0)
	m.ReadOps.Store(0)
	m.ReadBytes.Store(0)
	m.ErrorOps.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
}

// Observer receives notifications of append/scan/reclamation/error events,
// independent of logging, so callers can wire metrics without parsing log
// lines.
type Observer interface {
	OnAppend(cbID int, id uint32, bytes int)
	OnScan(cbID int, entries uint32)
	OnReclaim(cbID int, sector uint32)
	OnRead(cbID int, bytes int)
	OnError(err *Error)
}

// NoOpObserver discards every event; it is the Driver's default Observer.
type NoOpObserver struct{}

func (NoOpObserver) OnAppend(int, uint32, int) {}
func (NoOpObserver) OnScan(int, uint32)        {}
func (NoOpObserver) OnReclaim(int, uint32)     {}
func (NoOpObserver) OnRead(int, int)           {}
func (NoOpObserver) OnError(*Error)            {}

// MetricsObserver implements Observer by recording into a Metrics instance.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an Observer that records to m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) OnAppend(cbID int, id uint32, bytes int) {
	o.metrics.RecordAppend(uint64(bytes), 0)
}

func (o *MetricsObserver) OnScan(cbID int, entries uint32) {
	o.metrics.RecordScan(0)
}

func (o *MetricsObserver) OnReclaim(cbID int, sector uint32) {
	o.metrics.RecordReclaim()
}

func (o *MetricsObserver) OnRead(cbID int, bytes int) {
	o.metrics.RecordRead(uint64(bytes), 0)
}

func (o *MetricsObserver) OnError(err *Error) {
	o.metrics.RecordError()
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
