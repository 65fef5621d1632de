package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/linkwarden/linkwarden/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "linkwarden_resolve_cache_hits_total %d\n", snap.ResolveCacheHits)
	writeMetric(w, "linkwarden_resolve_cache_misses_total %d\n", snap.ResolveCacheMisses)
	writeMetric(w, "linkwarden_resolve_duration_seconds_count %d\n", snap.ResolveDurationCount)
	writeMetric(w, "linkwarden_resolve_duration_seconds_sum %.6f\n", float64(snap.ResolveDurationTotalNs)/1e9)
	writeLabeled(w, "linkwarden_resolve_denied_total", "verdict", snap.ResolveDenied)

	writeMetric(w, "linkwarden_links_created_total %d\n", snap.LinksCreated)
	writeMetric(w, "linkwarden_links_updated_total %d\n", snap.LinksUpdated)
	writeMetric(w, "linkwarden_links_deleted_total %d\n", snap.LinksDeleted)

	writeLabeled(w, "linkwarden_clicks_published_total", "status", snap.ClicksPublished)
	writeLabeled(w, "linkwarden_clicks_processed_total", "status", snap.ClicksProcessed)
	writeMetric(w, "linkwarden_click_queue_depth %d\n", snap.ClickQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// writeLabeled emits a counter family with one label, in stable order.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}
