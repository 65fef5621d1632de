package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncResolveCacheHit is a no-op.
func (n *NoopRecorder) IncResolveCacheHit() {}

// IncResolveCacheMiss is a no-op.
func (n *NoopRecorder) IncResolveCacheMiss() {}

// IncResolveDenied is a no-op.
func (n *NoopRecorder) IncResolveDenied(verdict string) {}

// ObserveResolveDuration is a no-op.
func (n *NoopRecorder) ObserveResolveDuration(duration time.Duration) {}

// IncLinkCreated is a no-op.
func (n *NoopRecorder) IncLinkCreated() {}

// IncLinkUpdated is a no-op.
func (n *NoopRecorder) IncLinkUpdated() {}

// IncLinkDeleted is a no-op.
func (n *NoopRecorder) IncLinkDeleted() {}

// IncClickPublished is a no-op.
func (n *NoopRecorder) IncClickPublished(status string) {}

// IncClickProcessed is a no-op.
func (n *NoopRecorder) IncClickProcessed(status string) {}

// ObserveClickBatchSize is a no-op.
func (n *NoopRecorder) ObserveClickBatchSize(size int) {}

// ObserveClickBatchDuration is a no-op.
func (n *NoopRecorder) ObserveClickBatchDuration(duration time.Duration) {}

// SetClickQueueDepth is a no-op.
func (n *NoopRecorder) SetClickQueueDepth(depth int64) {}

// ObserveClickIngestLag is a no-op.
func (n *NoopRecorder) ObserveClickIngestLag(lag time.Duration) {}
