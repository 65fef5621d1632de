// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Resolution metrics
	IncResolveCacheHit()
	IncResolveCacheMiss()
	IncResolveDenied(verdict string)
	ObserveResolveDuration(duration time.Duration)

	// Link management metrics
	IncLinkCreated()
	IncLinkUpdated()
	IncLinkDeleted()

	// Click pipeline metrics
	IncClickPublished(status string) // status: "success" or "dropped"
	IncClickProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveClickBatchSize(size int)
	ObserveClickBatchDuration(duration time.Duration)
	SetClickQueueDepth(depth int64)
	ObserveClickIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
