package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tag is a named label that can be attached to any number of items.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AddTag creates a tag if it does not already exist and returns its id.
// Adding an existing name returns the existing id.
func (s *Store) AddTag(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO tags (name) VALUES (?)", name,
	); err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM tags WHERE name = ?", name,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup tag: %w", err)
	}
	return id, nil
}

// FindTag looks up a tag id by name. ok is false when no such tag exists.
func (s *Store) FindTag(ctx context.Context, name string) (id int64, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM tags WHERE name = ?", name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup tag: %w", err)
	}
	return id, true, nil
}

// AddItemTag associates a tag with an item. The association is idempotent.
func (s *Store) AddItemTag(ctx context.Context, itemID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)",
		itemID, tagID,
	); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// RemoveItemTag removes a tag association from an item. Removing an absent
// association is a no-op.
func (s *Store) RemoveItemTag(ctx context.Context, itemID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM item_tags WHERE item_id = ? AND tag_id = ?",
		itemID, tagID,
	); err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// GetAllTags lists every tag ordered by name.
func (s *Store) GetAllTags(ctx context.Context) ([]*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM tags ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// GetItemsByTag returns up to limit items carrying the named tag, most
// recent first. An unknown tag yields an empty result.
func (s *Store) GetItemsByTag(ctx context.Context, name string, limit int64) ([]*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id, h.content_type, h.content, h.preview, h.is_favorite, h.created_at
		 FROM clipboard_history h
		 JOIN item_tags it ON h.id = it.item_id
		 JOIN tags t ON it.tag_id = t.id
		 WHERE t.name = ?
		 ORDER BY h.created_at DESC, h.id DESC
		 LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query items by tag: %w", err)
	}
	return s.collectItems(ctx, rows)
}

func (s *Store) itemTagsLocked(ctx context.Context, itemID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.name
		 FROM tags t
		 JOIN item_tags it ON t.id = it.tag_id
		 WHERE it.item_id = ?
		 ORDER BY t.name`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item tags: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item tags: %w", err)
	}
	return names, nil
}
