// Package clickstream captures redirect clicks and feeds them through a
// Redis stream into durable storage.
package clickstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkwarden/linkwarden/internal/metrics"
)

const (
	// StreamKey is the Redis stream for click events.
	StreamKey = "stream:clicks"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:clicks:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// ClickPayload is the compressed event format for the Redis stream.
type ClickPayload struct {
	Code      string `json:"c"`            // short code or alias that was hit
	LinkID    string `json:"lid"`          // link_id
	IP        string `json:"ip,omitempty"` // client ip
	UserAgent string `json:"ua,omitempty"` // user_agent (truncated)
	Country   string `json:"cc,omitempty"` // country code
	ClickedAt int64  `json:"t"`            // Unix milliseconds
}

// Publisher enqueues click events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
	wg      sync.WaitGroup
}

// NewPublisher creates a new click event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "clickstream.publisher"),
		metrics: recorder,
	}
}

// Publish adds a click event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event ClickPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget). In-flight
// publishes are tracked so Drain can wait for them during shutdown.
func (p *Publisher) PublishAsync(event ClickPayload) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish click event",
				"code", event.Code,
				"error", err,
			)
			p.metrics.IncClickPublished("dropped")
			return
		}

		p.logger.Debug("click event published",
			"code", event.Code,
			"stream_id", streamID,
		)
		p.metrics.IncClickPublished("success")
	}()
}

// Drain waits for in-flight async publishes to settle.
// It implements server.ShutdownFunc.
func (p *Publisher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TruncateUserAgent truncates a user agent to max 500 chars.
func TruncateUserAgent(ua string) string {
	if len(ua) > 500 {
		return ua[:500]
	}
	return ua
}

// ExtractCountryCode extracts a country code from an edge header such
// as CF-IPCountry. Returns empty string if missing or invalid.
func ExtractCountryCode(header string) string {
	if header != "" && len(header) == 2 {
		return strings.ToUpper(header)
	}
	return ""
}
