package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/linkwarden/linkwarden/internal/model"
)

// ErrTokenNotFound indicates no owner token matched.
var ErrTokenNotFound = errors.New("owner token not found")

const tokenColumns = `id, owner_id, token_hash, prefix, name, created_at, last_used_at, revoked_at`

// InsertToken persists a new owner token.
func (r *Repository) InsertToken(ctx context.Context, token *model.OwnerToken) error {
	query := `
		INSERT INTO owner_tokens (id, owner_id, token_hash, prefix, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.OwnerID,
		token.TokenHash,
		token.Prefix,
		token.Name,
		token.CreatedAt,
	)
	if err != nil {
		return unavailable("insert owner token", err)
	}

	return nil
}

// FindTokensByPrefix returns the unrevoked tokens matching a visible
// prefix. Authentication verifies the full token against each
// candidate's hash, which handles prefix collisions.
func (r *Repository) FindTokensByPrefix(ctx context.Context, prefix string) ([]*model.OwnerToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM owner_tokens
		WHERE prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, unavailable("find tokens by prefix", err)
	}
	defer rows.Close()

	var tokens []*model.OwnerToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, unavailable("scan owner token", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate owner tokens", err)
	}

	return tokens, nil
}

// TouchTokenLastUsed records token use. Best effort, callers may
// ignore the error.
func (r *Repository) TouchTokenLastUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE owner_tokens SET last_used_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return unavailable("touch token", err)
	}
	return nil
}

// RevokeToken marks a token revoked.
func (r *Repository) RevokeToken(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `UPDATE owner_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return unavailable("revoke token", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func scanToken(row pgx.Row) (*model.OwnerToken, error) {
	var token model.OwnerToken
	err := row.Scan(
		&token.ID,
		&token.OwnerID,
		&token.TokenHash,
		&token.Prefix,
		&token.Name,
		&token.CreatedAt,
		&token.LastUsedAt,
		&token.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
