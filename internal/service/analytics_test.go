package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/linkwarden/linkwarden/internal/model"
)

func newAnalyticsFixture(t *testing.T) (*AnalyticsService, *model.Link) {
	t.Helper()

	store := newFakeLinkStore()
	linkCache := newFakeLinkCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	links := NewLinkService(store, linkCache, nil, logger, nil)

	link, err := links.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://example.com/campaign",
		CustomAlias: "spring",
		OwnerID:     "owner-1",
	})
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	clicks := &fakeClickStore{
		total:  42,
		unique: 17,
		daily: []model.DailyClicks{
			{Date: "2026-08-30", Clicks: 12},
			{Date: "2026-08-31", Clicks: 30},
		},
		breakdown: &model.ClickBreakdown{
			Devices:   map[string]int64{"Mobile": 30, "Desktop": 12},
			Countries: map[string]int64{"VN": 20, "Unknown": 22},
			Browsers:  map[string]int64{"Chrome": 40, "Unknown": 2},
		},
	}

	return NewAnalyticsService(store, clicks), link
}

func TestGetSummary(t *testing.T) {
	t.Parallel()

	svc, link := newAnalyticsFixture(t)

	summary, err := svc.GetSummary(context.Background(), link.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}

	if summary.TotalClicks != 42 {
		t.Errorf("TotalClicks = %d, want 42", summary.TotalClicks)
	}
	if summary.UniqueVisitors != 17 {
		t.Errorf("UniqueVisitors = %d, want 17", summary.UniqueVisitors)
	}
	if summary.ShortCode != "spring" {
		t.Errorf("ShortCode = %q, want the alias", summary.ShortCode)
	}
	if summary.OriginalURL != "https://example.com/campaign" {
		t.Errorf("OriginalURL = %q", summary.OriginalURL)
	}
}

func TestGetDailySeries_Ascending(t *testing.T) {
	t.Parallel()

	svc, link := newAnalyticsFixture(t)

	series, err := svc.GetDailySeries(context.Background(), link.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetDailySeries() error = %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if series[0].Date >= series[1].Date {
		t.Errorf("series not ascending: %q then %q", series[0].Date, series[1].Date)
	}
}

func TestGetBreakdown(t *testing.T) {
	t.Parallel()

	svc, link := newAnalyticsFixture(t)

	breakdown, err := svc.GetBreakdown(context.Background(), link.ID, "owner-1")
	if err != nil {
		t.Fatalf("GetBreakdown() error = %v", err)
	}

	if breakdown.Devices["Mobile"] != 30 {
		t.Errorf("Devices[Mobile] = %d, want 30", breakdown.Devices["Mobile"])
	}
	if breakdown.Countries["Unknown"] != 22 {
		t.Errorf("Countries[Unknown] = %d, want 22", breakdown.Countries["Unknown"])
	}
}

func TestAnalytics_OwnershipIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, link := newAnalyticsFixture(t)
	ctx := context.Background()

	// A foreign link and a nonexistent link must fail identically.
	_, foreignErr := svc.GetSummary(ctx, link.ID, "owner-2")
	_, missingErr := svc.GetSummary(ctx, "no-such-link", "owner-2")

	if !errors.Is(foreignErr, ErrLinkNotFound) {
		t.Errorf("foreign link error = %v, want ErrLinkNotFound", foreignErr)
	}
	if !errors.Is(missingErr, ErrLinkNotFound) {
		t.Errorf("missing link error = %v, want ErrLinkNotFound", missingErr)
	}

	if _, err := svc.GetDailySeries(ctx, link.ID, "owner-2"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("GetDailySeries foreign error = %v, want ErrLinkNotFound", err)
	}
	if _, err := svc.GetBreakdown(ctx, link.ID, "owner-2"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("GetBreakdown foreign error = %v, want ErrLinkNotFound", err)
	}
}
