package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/linkwarden/linkwarden/internal/model"
)

// ClickEventRepository provides database access for click events and
// the aggregation queries behind the analytics views.
type ClickEventRepository struct {
	repo *Repository
}

// NewClickEventRepository creates a ClickEventRepository.
func NewClickEventRepository(repo *Repository) *ClickEventRepository {
	return &ClickEventRepository{repo: repo}
}

// BulkInsert appends click events idempotently and returns how many
// rows were newly inserted per link. Re-delivered events hit the
// event_id conflict and count zero, so a retried batch can increment
// click counters without double counting.
func (r *ClickEventRepository) BulkInsert(ctx context.Context, events []*model.ClickEvent) (map[string]int64, error) {
	inserted := make(map[string]int64)
	if len(events) == 0 {
		return inserted, nil
	}

	query := `
		INSERT INTO click_events (id, event_id, link_id, ip, device, browser, country, clicked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.LinkID,
			event.IP,
			event.Device,
			event.Browser,
			event.Country,
			event.Timestamp,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, event := range events {
		tag, err := results.Exec()
		if err != nil {
			return nil, unavailable("bulk insert click events", err)
		}
		if tag.RowsAffected() > 0 {
			inserted[event.LinkID]++
		}
	}

	return inserted, nil
}

// IncrementClickCount bumps the denormalized counter on the parent
// link. Exposed here so the stream worker needs a single store.
func (r *ClickEventRepository) IncrementClickCount(ctx context.Context, linkID string, n int64) error {
	return r.repo.IncrementClickCount(ctx, linkID, n)
}

// Summary returns the total click count and distinct-IP visitor count
// for one link. Ownership must already have been checked by the caller
// through FindByIDForOwner.
func (r *ClickEventRepository) Summary(ctx context.Context, linkID string) (int64, int64, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT ip)
		FROM click_events
		WHERE link_id = $1
	`

	var total, unique int64
	if err := r.repo.pool.QueryRow(ctx, query, linkID).Scan(&total, &unique); err != nil {
		return 0, 0, unavailable("query click summary", err)
	}

	return total, unique, nil
}

// DailySeries returns per-UTC-date click counts for a link, ascending
// by date. Dates without events are absent (sparse series).
func (r *ClickEventRepository) DailySeries(ctx context.Context, linkID string) ([]model.DailyClicks, error) {
	query := `
		SELECT to_char(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM click_events
		WHERE link_id = $1
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.repo.pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, unavailable("query daily series", err)
	}
	defer rows.Close()

	var series []model.DailyClicks
	for rows.Next() {
		var point model.DailyClicks
		if err := rows.Scan(&point.Date, &point.Clicks); err != nil {
			return nil, unavailable("scan daily series", err)
		}
		series = append(series, point)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate daily series", err)
	}

	return series, nil
}

// Breakdown returns event counts grouped independently by device,
// country and browser. Categories are reported exactly as captured,
// "Unknown" included.
func (r *ClickEventRepository) Breakdown(ctx context.Context, linkID string) (*model.ClickBreakdown, error) {
	breakdown := &model.ClickBreakdown{
		Devices:   make(map[string]int64),
		Countries: make(map[string]int64),
		Browsers:  make(map[string]int64),
	}

	for column, dest := range map[string]map[string]int64{
		"device":  breakdown.Devices,
		"country": breakdown.Countries,
		"browser": breakdown.Browsers,
	} {
		if err := r.groupCounts(ctx, linkID, column, dest); err != nil {
			return nil, err
		}
	}

	return breakdown, nil
}

// groupCounts fills dest with COUNT(*) grouped by the given column.
// column is always one of the fixed category names above, never input.
func (r *ClickEventRepository) groupCounts(ctx context.Context, linkID, column string, dest map[string]int64) error {
	query := `SELECT ` + column + `, COUNT(*) FROM click_events WHERE link_id = $1 GROUP BY ` + column

	rows, err := r.repo.pool.Query(ctx, query, linkID)
	if err != nil {
		return unavailable("query "+column+" breakdown", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return unavailable("scan "+column+" breakdown", err)
		}
		if category == "" {
			category = model.Unknown
		}
		dest[category] = count
	}

	return rows.Err()
}
