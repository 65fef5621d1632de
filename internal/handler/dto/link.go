// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/linkwarden/linkwarden/internal/model"
)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url"`
	Alias       string     `json:"alias,omitempty"`
	Password    string     `json:"password,omitempty"`
	Private     bool       `json:"private,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest represents the request body for updating a link.
// Each field drives one mutation; absent fields are untouched.
type UpdateLinkRequest struct {
	Active      *bool      `json:"active,omitempty"`
	Private     *bool      `json:"private,omitempty"`
	Password    string     `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClearExpiry bool       `json:"clear_expiry,omitempty"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID          string     `json:"id"`
	ShortID     string     `json:"short_id"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	Active      bool       `json:"active"`
	Private     bool       `json:"private"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LinkListResponse represents a paginated list of links.
type LinkListResponse struct {
	Data       []LinkResponse `json:"data"`
	Pagination *Pagination    `json:"pagination"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// SummaryResponse represents the headline analytics for a link.
type SummaryResponse struct {
	TotalClicks    int64     `json:"total_clicks"`
	UniqueVisitors int64     `json:"unique_visitors"`
	ShortCode      string    `json:"short_code"`
	OriginalURL    string    `json:"original_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyClicksResponse is one point in the daily click series.
type DailyClicksResponse struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// BreakdownResponse represents clicks grouped by attribute.
type BreakdownResponse struct {
	Devices   map[string]int64 `json:"devices"`
	Countries map[string]int64 `json:"locations"`
	Browsers  map[string]int64 `json:"browsers"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:          link.ID,
		ShortID:     link.ShortID,
		CustomAlias: link.CustomAlias,
		ShortURL:    baseURL + "/" + link.Code(),
		OriginalURL: link.OriginalURL,
		Active:      link.Active,
		Private:     link.Private,
		ExpiresAt:   link.ExpiresAt,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models to LinkListResponse.
func ToLinkListResponse(links []*model.Link, baseURL string, nextCursor string, hasMore bool) *LinkListResponse {
	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToLinkResponse(link, baseURL)
	}
	return &LinkListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}

// ToSummaryResponse converts a LinkSummary to its DTO.
func ToSummaryResponse(summary *model.LinkSummary) *SummaryResponse {
	return &SummaryResponse{
		TotalClicks:    summary.TotalClicks,
		UniqueVisitors: summary.UniqueVisitors,
		ShortCode:      summary.ShortCode,
		OriginalURL:    summary.OriginalURL,
		CreatedAt:      summary.CreatedAt,
	}
}

// ToDailySeriesResponse converts the daily series to DTOs.
func ToDailySeriesResponse(series []model.DailyClicks) []DailyClicksResponse {
	out := make([]DailyClicksResponse, len(series))
	for i, day := range series {
		out[i] = DailyClicksResponse{Date: day.Date, Clicks: day.Clicks}
	}
	return out
}

// ToBreakdownResponse converts a ClickBreakdown to its DTO.
func ToBreakdownResponse(breakdown *model.ClickBreakdown) *BreakdownResponse {
	return &BreakdownResponse{
		Devices:   breakdown.Devices,
		Countries: breakdown.Countries,
		Browsers:  breakdown.Browsers,
	}
}
