package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/linkwarden/linkwarden/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetCoreSchemas drops and recreates the links and click_events
// schemas together. click_events holds an FK to links, so downs run in
// reverse migration order and ups in forward order.
func ResetCoreSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000002_click_events.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_links.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_links.up.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_click_events.up.sql")
}

// ResetOwnerTokensSchema drops and recreates the owner_tokens schema
// for tests.
func ResetOwnerTokensSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_owner_tokens")
}

func resetSchema(ctx context.Context, pool *pgxpool.Pool, migration string) error {
	if err := applyMigration(ctx, pool, migration+".down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, migration+".up.sql")
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestLink creates a test link with sensible defaults.
func NewTestLink(t testing.TB, shortID string) *model.Link {
	t.Helper()
	now := time.Now().UTC()
	return &model.Link{
		ID:          ulid.Make().String(),
		ShortID:     shortID,
		OriginalURL: "https://example.com/" + shortID,
		OwnerID:     "test-owner",
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestLinkWithExpiry creates a test link with an expiry time.
func NewTestLinkWithExpiry(t testing.TB, shortID string, expiresAt time.Time) *model.Link {
	t.Helper()
	link := NewTestLink(t, shortID)
	link.ExpiresAt = &expiresAt
	return link
}

// NewTestClickEvent creates a test click event for a link.
func NewTestClickEvent(t testing.TB, linkID, eventID string) *model.ClickEvent {
	t.Helper()
	return &model.ClickEvent{
		ID:        ulid.Make().String(),
		EventID:   eventID,
		LinkID:    linkID,
		IP:        "203.0.113.7",
		Device:    "Desktop",
		Browser:   "Chrome",
		Country:   "US",
		Timestamp: time.Now().UTC(),
	}
}

// UniqueShortCode generates a unique short code for tests.
func UniqueShortCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
