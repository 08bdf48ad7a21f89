package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

const categoryColumns = `id, name, slug, description, icon, color, parent_id,
	department_id, visibility, sort_order, link_count, created_at, updated_at`

// CreateCategory inserts a category. A slug collision within the same
// department scope surfaces as ErrAlreadyExists.
func (s *Store) CreateCategory(c *models.Category) error {
	_, err := s.conn.Exec(`
		INSERT INTO categories (id, name, slug, description, icon, color, parent_id,
			department_id, visibility, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Slug, c.Description, c.Icon, c.Color, nullable(c.ParentID),
		nullable(c.DepartmentID), string(c.Visibility), c.SortOrder, c.CreatedAt, c.UpdatedAt)
	return mapInsertErr("insert category", err)
}

// UpdateCategory writes the full category row.
func (s *Store) UpdateCategory(c *models.Category) error {
	res, err := s.conn.Exec(`
		UPDATE categories SET name = ?, slug = ?, description = ?, icon = ?, color = ?,
			parent_id = ?, visibility = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Slug, c.Description, c.Icon, c.Color, nullable(c.ParentID),
		string(c.Visibility), c.SortOrder, c.UpdatedAt, c.ID)
	if err != nil {
		return mapInsertErr("update category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: update category %s: %w", c.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. Links referencing it keep existing
// with their category_id nulled out by the FK action; child categories
// become roots the same way.
func (s *Store) DeleteCategory(id string) error {
	res, err := s.conn.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: delete category %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetCategory returns one category by id.
func (s *Store) GetCategory(id string) (*models.Category, error) {
	row := s.conn.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategoryRow(row, "get category")
}

// GetCategoryBySlug returns one category by slug, optionally scoped to a
// department.
func (s *Store) GetCategoryBySlug(slug, departmentID string) (*models.Category, error) {
	var row *sql.Row
	if departmentID != "" {
		row = s.conn.QueryRow(
			`SELECT `+categoryColumns+` FROM categories WHERE slug = ? AND department_id = ?`,
			slug, departmentID)
	} else {
		row = s.conn.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	}
	return scanCategoryRow(row, "get category by slug")
}

// ListCategories returns categories ordered by sort_order then name,
// optionally filtered to one department.
func (s *Store) ListCategories(departmentID string) ([]*models.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if departmentID != "" {
		q += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	q += ` ORDER BY sort_order, name`

	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCategorySortOrder assigns a single category's position. Reordering
// is a sequence of these updates, one per id.
func (s *Store) SetCategorySortOrder(id string, sortOrder int) error {
	res, err := s.conn.Exec(
		`UPDATE categories SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		sortOrder, id)
	if err != nil {
		return fmt.Errorf("store: set sort order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: set sort order %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// categoriesByID fetches a batch of categories into a map.
func (s *Store) categoriesByID(ids []string) (map[string]*models.Category, error) {
	out := make(map[string]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?, ", len(ids))
	rows, err := s.conn.Query(
		`SELECT `+categoryColumns+` FROM categories WHERE id IN (`+placeholders[:len(placeholders)-2]+`)`,
		toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("store: categories by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	var parentID, departmentID sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color,
		&parentID, &departmentID, &c.Visibility, &c.SortOrder, &c.LinkCount,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ParentID = parentID.String
	c.DepartmentID = departmentID.String
	return &c, nil
}

func scanCategoryRow(row *sql.Row, op string) (*models.Category, error) {
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return c, nil
}
