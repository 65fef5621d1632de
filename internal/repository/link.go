package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linkwarden/linkwarden/internal/model"
)

// Common errors for link store operations.
var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateCode = errors.New("short code or alias already exists")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

const linkColumns = `id, short_id, custom_alias, original_url, owner_id, is_active, is_private, password_hash, expires_at, click_count, created_at, updated_at`

// InsertLink persists a new link. The short_id and custom_alias unique
// indexes enforce the shared code namespace; a violation of either maps
// to ErrDuplicateCode, which also settles races between two concurrent
// creations of the same alias.
func (r *Repository) InsertLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.ShortID,
		link.CustomAlias,
		link.OriginalURL,
		link.OwnerID,
		link.Active,
		link.Private,
		link.PasswordHash,
		link.ExpiresAt,
		link.ClickCount,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return unavailable("insert link", err)
	}

	return nil
}

// FindByCode retrieves the link whose short_id or custom_alias equals
// the given code. This is the hot path for redirects.
func (r *Repository) FindByCode(ctx context.Context, code string) (*model.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE short_id = $1 OR custom_alias = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, unavailable("find link by code", err)
	}

	return link, nil
}

// FindByIDForOwner retrieves a link only when the owner matches.
// A foreign owner gets ErrLinkNotFound, indistinguishable from an
// unknown id, so link existence is never leaked across accounts.
func (r *Repository) FindByIDForOwner(ctx context.Context, id, ownerID string) (*model.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE id = $1 AND owner_id = $2
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, unavailable("find link for owner", err)
	}

	return link, nil
}

// UpdateLink writes the mutable policy fields back to the store.
// Identity fields (short_id, custom_alias, original_url, owner_id) are
// deliberately absent from the statement.
func (r *Repository) UpdateLink(ctx context.Context, link *model.Link) error {
	query := `
		UPDATE links
		SET is_active = $2, is_private = $3, password_hash = $4, expires_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Active,
		link.Private,
		link.PasswordHash,
		link.ExpiresAt,
	)

	if err != nil {
		return unavailable("update link", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// IncrementClickCount atomically adds n to the link's counter.
// The single UPDATE serializes concurrent callers at the row level, so
// no increments are lost.
func (r *Repository) IncrementClickCount(ctx context.Context, id string, n int64) error {
	query := `
		UPDATE links
		SET click_count = click_count + $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, n)
	if err != nil {
		return unavailable("increment click count", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// DeleteLink removes a link. Click events cascade at the schema level.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return unavailable("delete link", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// CodeExists checks the shared code namespace.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_id = $1 OR custom_alias = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, unavailable("check code exists", err)
	}

	return exists, nil
}

// LinkCursor is the decoded pagination cursor for owner listings.
type LinkCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLinksForOwner retrieves a page of an owner's links, newest first.
// Returns the page and an opaque cursor for the next one ("" when done).
func (r *Repository) ListLinksForOwner(ctx context.Context, ownerID, cursor string, limit int) ([]*model.Link, string, error) {
	var cur *LinkCursor
	if cursor != "" {
		var err error
		cur, err = decodeLinkCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = $1
	`
	args := []any{ownerID}

	if cur != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, cur.CreatedAt, cur.ID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit+1) // one extra row decides hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", unavailable("list links", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, "", unavailable("scan link", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, "", unavailable("iterate links", err)
	}

	var next string
	if len(links) > limit {
		links = links[:limit]
		last := links[len(links)-1]
		next = encodeLinkCursor(&LinkCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return links, next, nil
}

// scanLink scans one row into a Link model. custom_alias and
// password_hash are nullable in the schema.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	var alias, passwordHash *string

	err := row.Scan(
		&link.ID,
		&link.ShortID,
		&alias,
		&link.OriginalURL,
		&link.OwnerID,
		&link.Active,
		&link.Private,
		&passwordHash,
		&link.ExpiresAt,
		&link.ClickCount,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if alias != nil {
		link.CustomAlias = *alias
	}
	if passwordHash != nil {
		link.PasswordHash = *passwordHash
	}

	return &link, nil
}

// isUniqueViolation checks for PostgreSQL error 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func encodeLinkCursor(cursor *LinkCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

func decodeLinkCursor(s string) (*LinkCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor LinkCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
