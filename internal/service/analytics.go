package service

import (
	"context"
	"errors"

	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/repository"
)

// ClickStore is the aggregation surface the analytics service reads.
type ClickStore interface {
	Summary(ctx context.Context, linkID string) (total, unique int64, err error)
	DailySeries(ctx context.Context, linkID string) ([]model.DailyClicks, error)
	Breakdown(ctx context.Context, linkID string) (*model.ClickBreakdown, error)
}

// AnalyticsService serves per-link click aggregations. Every read is
// scoped to the owning caller; a link owned by someone else is reported
// as not found.
type AnalyticsService struct {
	links  LinkStore
	clicks ClickStore
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(links LinkStore, clicks ClickStore) *AnalyticsService {
	return &AnalyticsService{links: links, clicks: clicks}
}

// GetSummary returns the headline numbers for a link.
func (s *AnalyticsService) GetSummary(ctx context.Context, linkID, ownerID string) (*model.LinkSummary, error) {
	link, err := s.authorize(ctx, linkID, ownerID)
	if err != nil {
		return nil, err
	}

	total, unique, err := s.clicks.Summary(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	return &model.LinkSummary{
		TotalClicks:    total,
		UniqueVisitors: unique,
		ShortCode:      link.Code(),
		OriginalURL:    link.OriginalURL,
		CreatedAt:      link.CreatedAt,
	}, nil
}

// GetDailySeries returns per-day click counts in ascending date order.
func (s *AnalyticsService) GetDailySeries(ctx context.Context, linkID, ownerID string) ([]model.DailyClicks, error) {
	link, err := s.authorize(ctx, linkID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.clicks.DailySeries(ctx, link.ID)
}

// GetBreakdown returns click counts grouped by device, country and
// browser.
func (s *AnalyticsService) GetBreakdown(ctx context.Context, linkID, ownerID string) (*model.ClickBreakdown, error) {
	link, err := s.authorize(ctx, linkID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.clicks.Breakdown(ctx, link.ID)
}

// authorize loads the link if and only if the caller owns it.
func (s *AnalyticsService) authorize(ctx context.Context, linkID, ownerID string) (*model.Link, error) {
	link, err := s.links.FindByIDForOwner(ctx, linkID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}
