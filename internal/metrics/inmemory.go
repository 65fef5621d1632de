package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ResolveCacheHits       uint64
	ResolveCacheMisses     uint64
	ResolveDenied          map[string]uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64
	LinksCreated           uint64
	LinksUpdated           uint64
	LinksDeleted           uint64
	ClicksPublished        map[string]uint64
	ClicksProcessed        map[string]uint64
	ClickQueueDepth        int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	resolveCacheHits       uint64
	resolveCacheMisses     uint64
	resolveDurationCount   uint64
	resolveDurationTotalNs int64
	linksCreated           uint64
	linksUpdated           uint64
	linksDeleted           uint64
	clickQueueDepth        int64

	mu              sync.Mutex
	resolveDenied   map[string]uint64
	clicksPublished map[string]uint64
	clicksProcessed map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		resolveDenied:   make(map[string]uint64),
		clicksPublished: make(map[string]uint64),
		clicksProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	denied := copyCounts(m.resolveDenied)
	published := copyCounts(m.clicksPublished)
	processed := copyCounts(m.clicksProcessed)
	m.mu.Unlock()

	return Snapshot{
		ResolveCacheHits:       atomic.LoadUint64(&m.resolveCacheHits),
		ResolveCacheMisses:     atomic.LoadUint64(&m.resolveCacheMisses),
		ResolveDenied:          denied,
		ResolveDurationCount:   atomic.LoadUint64(&m.resolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&m.resolveDurationTotalNs),
		LinksCreated:           atomic.LoadUint64(&m.linksCreated),
		LinksUpdated:           atomic.LoadUint64(&m.linksUpdated),
		LinksDeleted:           atomic.LoadUint64(&m.linksDeleted),
		ClicksPublished:        published,
		ClicksProcessed:        processed,
		ClickQueueDepth:        atomic.LoadInt64(&m.clickQueueDepth),
	}
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncResolveCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncResolveCacheHit() {
	atomic.AddUint64(&m.resolveCacheHits, 1)
}

// IncResolveCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncResolveCacheMiss() {
	atomic.AddUint64(&m.resolveCacheMisses, 1)
}

// IncResolveDenied increments the denied counter for a verdict.
func (m *InMemoryRecorder) IncResolveDenied(verdict string) {
	m.mu.Lock()
	m.resolveDenied[verdict]++
	m.mu.Unlock()
}

// ObserveResolveDuration records resolution duration.
func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.resolveDurationCount, 1)
	atomic.AddInt64(&m.resolveDurationTotalNs, duration.Nanoseconds())
}

// IncLinkCreated increments the link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncLinkUpdated increments the link updated counter.
func (m *InMemoryRecorder) IncLinkUpdated() {
	atomic.AddUint64(&m.linksUpdated, 1)
}

// IncLinkDeleted increments the link deleted counter.
func (m *InMemoryRecorder) IncLinkDeleted() {
	atomic.AddUint64(&m.linksDeleted, 1)
}

// IncClickPublished increments the publish counter for a status.
func (m *InMemoryRecorder) IncClickPublished(status string) {
	m.mu.Lock()
	m.clicksPublished[status]++
	m.mu.Unlock()
}

// IncClickProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncClickProcessed(status string) {
	m.mu.Lock()
	m.clicksProcessed[status]++
	m.mu.Unlock()
}

// ObserveClickBatchSize is recorded only in aggregate counters.
func (m *InMemoryRecorder) ObserveClickBatchSize(size int) {}

// ObserveClickBatchDuration is recorded only in aggregate counters.
func (m *InMemoryRecorder) ObserveClickBatchDuration(duration time.Duration) {}

// SetClickQueueDepth records the current queue depth.
func (m *InMemoryRecorder) SetClickQueueDepth(depth int64) {
	atomic.StoreInt64(&m.clickQueueDepth, depth)
}

// ObserveClickIngestLag is recorded only in aggregate counters.
func (m *InMemoryRecorder) ObserveClickIngestLag(lag time.Duration) {}
