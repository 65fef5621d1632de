package model

import "time"

// Unknown is the sentinel for request attributes that could not be derived.
const Unknown = "Unknown"

// ClickEvent represents a single recorded resolution.
// Events are append-only: created once per policy-passing resolution,
// never mutated, read only by the aggregation queries.
type ClickEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	LinkID string `json:"link_id"` // FK to links.id

	// Request metadata, "Unknown" when undetectable.
	IP      string `json:"ip"`
	Device  string `json:"device"`
	Browser string `json:"browser"`
	Country string `json:"country"`

	Timestamp time.Time `json:"timestamp"`  // Capture time, drives daily bucketing
	CreatedAt time.Time `json:"created_at"` // DB insertion time
}

// LinkSummary is the aggregated per-link analytics view.
type LinkSummary struct {
	TotalClicks    int64     `json:"total_clicks"`
	UniqueVisitors int64     `json:"unique_visitors"` // distinct IPs
	ShortCode      string    `json:"short_code"`      // custom alias when set
	OriginalURL    string    `json:"original_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyClicks is one point of the sparse daily time series.
type DailyClicks struct {
	Date   string `json:"date"` // UTC calendar date, YYYY-MM-DD
	Clicks int64  `json:"clicks"`
}

// ClickBreakdown groups event counts by captured category values.
// Values are reported exactly as stored, including "Unknown".
type ClickBreakdown struct {
	Devices   map[string]int64 `json:"devices"`
	Countries map[string]int64 `json:"locations"`
	Browsers  map[string]int64 `json:"browsers"`
}
