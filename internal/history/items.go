package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const itemColumns = "id, content_type, content, preview, is_favorite, created_at"

// scanItem scans one clipboard_history row. Tags are filled separately.
func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item     Item
		favorite int64
	)
	err := scanner.Scan(
		&item.ID,
		&item.ContentType,
		&item.Content,
		&item.Preview,
		&favorite,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.IsFavorite = favorite != 0
	item.Tags = []string{}
	return &item, nil
}

// AddItem inserts a new history entry with a store-assigned timestamp and
// returns its id. The full-text index picks the row up via triggers, so the
// item is searchable as soon as AddItem returns.
func (s *Store) AddItem(ctx context.Context, contentType, content, preview string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clipboard_history (content_type, content, preview, created_at)
		 VALUES (?, ?, ?, ?)`,
		contentType, content, preview, formatTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetItem returns a single item by id, or sql.ErrNoRows if absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM clipboard_history WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	tags, err := s.itemTagsLocked(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Tags = tags
	return item, nil
}

// Counts reports the total number of items and how many are favorites.
func (s *Store) Counts(ctx context.Context) (total, favorites int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_favorite), 0) FROM clipboard_history",
	).Scan(&total, &favorites)
	if err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	return total, favorites, nil
}

// GetItems returns up to limit items ordered most recent first, skipping the
// first offset items.
func (s *Store) GetItems(ctx context.Context, limit, offset int64) ([]*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItemsLocked(ctx, limit, offset)
}

func (s *Store) getItemsLocked(ctx context.Context, limit, offset int64) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM clipboard_history
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return s.collectItems(ctx, rows)
}

// SearchItems performs a case-insensitive substring match across content,
// preview and tag names. Wildcard characters in query are matched literally.
// An empty (or whitespace-only) query lists the most recent items instead.
// Results are ordered favorites first, then most recent first.
func (s *Store) SearchItems(ctx context.Context, query string, limit int64) ([]*Item, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return s.GetItems(ctx, limit, 0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pattern := strings.ToLower(likePattern(trimmed))
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT h.id, h.content_type, h.content, h.preview, h.is_favorite, h.created_at
		 FROM clipboard_history h
		 LEFT JOIN item_tags it ON h.id = it.item_id
		 LEFT JOIN tags t ON it.tag_id = t.id
		 WHERE LOWER(h.content) LIKE ? ESCAPE '\'
		    OR LOWER(h.preview) LIKE ? ESCAPE '\'
		    OR LOWER(IFNULL(t.name, '')) LIKE ? ESCAPE '\'
		 ORDER BY h.is_favorite DESC, h.created_at DESC, h.id DESC
		 LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return s.collectItems(ctx, rows)
}

// likePattern escapes LIKE wildcards in input with a backslash and wraps it
// for substring matching, so user input cannot inject wildcard behaviour.
func likePattern(input string) string {
	var b strings.Builder
	b.Grow(len(input) + 2)
	b.WriteByte('%')
	for _, r := range input {
		switch r {
		case '\\', '%', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}

// ToggleFavorite flips the favorite flag and returns the new state.
//
// A missing id is treated as an implicit "not favorite": the update writes
// nothing but the call reports true rather than an error. Callers that need
// existence checks should fetch the item first.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var favorite int64
	err := s.db.QueryRowContext(ctx,
		"SELECT is_favorite FROM clipboard_history WHERE id = ?", id,
	).Scan(&favorite)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read favorite state: %w", err)
	}

	newState := int64(0)
	if favorite == 0 {
		newState = 1
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE clipboard_history SET is_favorite = ? WHERE id = ?", newState, id,
	); err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return newState != 0, nil
}

// DeleteItem removes an item; its tag associations cascade. Deleting a
// non-existent id is a no-op.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM clipboard_history WHERE id = ?", id,
	); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ClearNonFavorites removes every item that is not marked favorite.
func (s *Store) ClearNonFavorites(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM clipboard_history WHERE is_favorite = 0",
	); err != nil {
		return fmt.Errorf("clear non-favorites: %w", err)
	}
	return nil
}

// ResetAll removes every item, tag and association in one transaction.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM item_tags",
		"DELETE FROM tags",
		"DELETE FROM clipboard_history",
		"DELETE FROM clipboard_fts",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// MaintainLimit enforces the history capacity bound. Overflow is evicted
// from non-favorited items oldest first; when those run out, the remainder
// comes from the full item set oldest first, so the bound holds even if it
// costs favorites.
func (s *Store) MaintainLimit(ctx context.Context, maxItems int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxItems <= 0 {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM clipboard_history"); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin eviction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clipboard_history",
	).Scan(&total); err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	overflow := total - maxItems
	if overflow <= 0 {
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM clipboard_history WHERE id IN (
		     SELECT id FROM clipboard_history
		     WHERE is_favorite = 0
		     ORDER BY created_at ASC, id ASC
		     LIMIT ?
		 )`,
		overflow,
	)
	if err != nil {
		return fmt.Errorf("evict non-favorites: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if remaining := overflow - removed; remaining > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM clipboard_history WHERE id IN (
			     SELECT id FROM clipboard_history
			     ORDER BY created_at ASC, id ASC
			     LIMIT ?
			 )`,
			remaining,
		); err != nil {
			return fmt.Errorf("evict favorites: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit eviction: %w", err)
	}
	return nil
}

// collectItems drains rows and fills each item's tags.
func (s *Store) collectItems(ctx context.Context, rows *sql.Rows) ([]*Item, error) {
	defer rows.Close()

	items := make([]*Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	for _, item := range items {
		tags, err := s.itemTagsLocked(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		item.Tags = tags
	}
	return items, nil
}
