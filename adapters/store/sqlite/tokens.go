package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/layer-3/walletgate/core"
)

const tokenColumns = `id, mint, name, logo, description, twitter_url, telegram_url, website_url, discord_url,
	is_active, deleted_at, deleted_by, created_at, updated_at, created_by, updated_by`

func scanToken(row rowScanner) (core.TokenMetadata, error) {
	var (
		t                    core.TokenMetadata
		deletedAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Mint, &t.Name, &t.Logo, &t.Description,
		&t.TwitterURL, &t.TelegramURL, &t.WebsiteURL, &t.DiscordURL,
		&t.IsActive, &deletedAt, &t.DeletedBy, &createdAt, &updatedAt, &t.CreatedBy, &t.UpdatedBy,
	); err != nil {
		return core.TokenMetadata{}, err
	}
	if deletedAt.Valid {
		ts := fromMillis(deletedAt.Int64)
		t.DeletedAt = &ts
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func getToken(ctx context.Context, q queryRower, mint string, includeDeleted bool) (core.TokenMetadata, error) {
	query := `SELECT ` + tokenColumns + ` FROM token_metadata_overrides WHERE mint = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	t, err := scanToken(q.QueryRowContext(ctx, query, mint))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TokenMetadata{}, core.ErrNotFound
	}
	if err != nil {
		return core.TokenMetadata{}, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// ListTokens returns one page of token overrides, most recently updated
// first, and whether more rows follow.
func (s *Store) ListTokens(ctx context.Context, q core.TokenQuery) ([]core.TokenMetadata, bool, error) {
	q = q.Normalize()

	var (
		where []string
		args  []any
	)
	if !q.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if q.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		where = append(where, "(mint LIKE ? ESCAPE '\\' OR name LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(search) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + tokenColumns + ` FROM token_metadata_overrides`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	// One extra row tells whether another page exists.
	args = append(args, q.Limit+1, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]core.TokenMetadata, 0, q.Limit)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list tokens: %w", err)
	}

	hasMore := len(tokens) > q.Limit
	if hasMore {
		tokens = tokens[:q.Limit]
	}
	return tokens, hasMore, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// GetToken returns the live override for mint.
func (s *Store) GetToken(ctx context.Context, mint string) (core.TokenMetadata, error) {
	return getToken(ctx, s.db, mint, false)
}

// UpsertToken creates or replaces the override for in.Mint. Upserting a
// soft-deleted mint revives it.
func (s *Store) UpsertToken(ctx context.Context, in core.TokenInput) (core.TokenMetadata, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	var saved core.TokenMetadata
	err := s.withTx(ctx, func(tx *sql.Tx, actor string) error {
		before, err := getToken(ctx, tx, in.Mint, true)
		exists := err == nil
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}

		now := toMillis(s.now())
		if exists {
			_, err = tx.ExecContext(ctx,
				`UPDATE token_metadata_overrides SET name = ?, logo = ?, description = ?, twitter_url = ?,
				 telegram_url = ?, website_url = ?, discord_url = ?, is_active = ?, deleted_at = NULL,
				 deleted_by = '', updated_at = ?, updated_by = ? WHERE mint = ?`,
				in.Name, in.Logo, in.Description, in.TwitterURL, in.TelegramURL, in.WebsiteURL, in.DiscordURL,
				active, now, actor, in.Mint,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO token_metadata_overrides (mint, name, logo, description, twitter_url, telegram_url,
				 website_url, discord_url, is_active, created_at, updated_at, created_by, updated_by)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				in.Mint, in.Name, in.Logo, in.Description, in.TwitterURL, in.TelegramURL, in.WebsiteURL, in.DiscordURL,
				active, now, now, actor, actor,
			)
		}
		if err != nil {
			return fmt.Errorf("upsert token: %w", err)
		}

		if saved, err = getToken(ctx, tx, in.Mint, false); err != nil {
			return err
		}
		if exists {
			return s.audit(ctx, tx, "token_metadata_overrides", "UPDATE", actor, before, saved)
		}
		return s.audit(ctx, tx, "token_metadata_overrides", "INSERT", actor, nil, saved)
	})
	if err != nil {
		return core.TokenMetadata{}, err
	}
	return saved, nil
}

// SoftDeleteToken hides the override for mint without removing its row.
func (s *Store) SoftDeleteToken(ctx context.Context, mint string) error {
	return s.withTx(ctx, func(tx *sql.Tx, actor string) error {
		before, err := getToken(ctx, tx, mint, false)
		if err != nil {
			return err
		}
		now := toMillis(s.now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE token_metadata_overrides SET deleted_at = ?, deleted_by = ?, updated_at = ?, updated_by = ?
			 WHERE mint = ?`,
			now, actor, now, actor, mint,
		); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		return s.audit(ctx, tx, "token_metadata_overrides", "DELETE", actor, before, nil)
	})
}

// RestoreToken revives a soft-deleted override.
func (s *Store) RestoreToken(ctx context.Context, mint string) (core.TokenMetadata, error) {
	var restored core.TokenMetadata
	err := s.withTx(ctx, func(tx *sql.Tx, actor string) error {
		before, err := getToken(ctx, tx, mint, true)
		if err != nil {
			return err
		}
		if before.DeletedAt == nil {
			return core.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE token_metadata_overrides SET deleted_at = NULL, deleted_by = '', updated_at = ?, updated_by = ?
			 WHERE mint = ?`,
			toMillis(s.now()), actor, mint,
		); err != nil {
			return fmt.Errorf("restore token: %w", err)
		}
		if restored, err = getToken(ctx, tx, mint, false); err != nil {
			return err
		}
		return s.audit(ctx, tx, "token_metadata_overrides", "UPDATE", actor, before, restored)
	})
	if err != nil {
		return core.TokenMetadata{}, err
	}
	return restored, nil
}
