package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

const tagColumns = `id, name, slug, color, description, usage_count, created_at`

// CreateTag inserts a tag. A slug collision surfaces as ErrAlreadyExists,
// which getOrCreate callers treat as "fetch and return the winner".
func (s *Store) CreateTag(t *models.Tag) error {
	_, err := s.conn.Exec(`
		INSERT INTO tags (id, name, slug, color, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Slug, t.Color, t.Description, t.CreatedAt)
	return mapInsertErr("insert tag", err)
}

// DeleteTag removes a tag; its link associations cascade.
func (s *Store) DeleteTag(id string) error {
	res, err := s.conn.Exec(`DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: delete tag %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetTag returns one tag by id.
func (s *Store) GetTag(id string) (*models.Tag, error) {
	row := s.conn.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	return scanTagRow(row, "get tag")
}

// GetTagBySlug returns one tag by its globally unique slug.
func (s *Store) GetTagBySlug(slug string) (*models.Tag, error) {
	row := s.conn.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug)
	return scanTagRow(row, "get tag by slug")
}

// ListTags returns all tags ordered by usage, most used first.
func (s *Store) ListTags() ([]models.Tag, error) {
	return s.queryTags(`SELECT `+tagColumns+` FROM tags ORDER BY usage_count DESC, name`, nil)
}

// SearchTags performs a case-insensitive substring match on tag names,
// ordered by usage and capped at limit.
func (s *Store) SearchTags(query string, limit int) ([]models.Tag, error) {
	return s.queryTags(`
		SELECT `+tagColumns+` FROM tags
		WHERE name LIKE ?
		ORDER BY usage_count DESC, name
		LIMIT ?
	`, []any{"%" + query + "%", limit})
}

// PopularTags returns the most-used tags.
func (s *Store) PopularTags(limit int) ([]models.Tag, error) {
	return s.queryTags(`
		SELECT `+tagColumns+` FROM tags ORDER BY usage_count DESC, name LIMIT ?
	`, []any{limit})
}

// TagsForLink returns the tags associated with one link.
func (s *Store) TagsForLink(linkID string) ([]models.Tag, error) {
	return s.queryTags(`
		SELECT t.id, t.name, t.slug, t.color, t.description, t.usage_count, t.created_at
		FROM link_tags lt JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id = ?
		ORDER BY t.name
	`, []any{linkID})
}

func (s *Store) queryTags(q string, args []any) ([]models.Tag, error) {
	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query tags: %w", err)
	}
	defer rows.Close()

	out := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.Description, &t.UsageCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTagRow(row *sql.Row, op string) (*models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.Description, &t.UsageCount, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return &t, nil
}
