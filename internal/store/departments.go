package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

const departmentColumns = `id, lark_department_id, name, name_en, description,
	parent_id, member_count, created_at, updated_at`

// UpsertDepartment inserts or updates a department keyed by its external
// (HR directory) identifier. Only the sync job calls this; end users
// never create departments.
func (s *Store) UpsertDepartment(d *models.Department) error {
	_, err := s.conn.Exec(`
		INSERT INTO departments (id, lark_department_id, name, name_en, description,
			parent_id, member_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lark_department_id) DO UPDATE SET
			name         = excluded.name,
			name_en      = excluded.name_en,
			description  = excluded.description,
			parent_id    = excluded.parent_id,
			member_count = excluded.member_count,
			updated_at   = excluded.updated_at
	`, d.ID, d.LarkDepartmentID, d.Name, d.NameEn, d.Description,
		nullable(d.ParentID), d.MemberCount, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert department: %w", err)
	}
	return nil
}

// SetDepartmentParent resolves the parent pointer after all rows of a
// sync batch have been upserted.
func (s *Store) SetDepartmentParent(larkID, parentLarkID string) error {
	_, err := s.conn.Exec(`
		UPDATE departments
		SET parent_id = (SELECT id FROM departments WHERE lark_department_id = ?)
		WHERE lark_department_id = ?
	`, parentLarkID, larkID)
	if err != nil {
		return fmt.Errorf("store: set department parent: %w", err)
	}
	return nil
}

// GetDepartment returns one department by id.
func (s *Store) GetDepartment(id string) (*models.Department, error) {
	row := s.conn.QueryRow(`SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
	d, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: get department: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get department: %w", err)
	}
	return d, nil
}

// GetDepartmentByLarkID returns one department by its external identifier.
func (s *Store) GetDepartmentByLarkID(larkID string) (*models.Department, error) {
	row := s.conn.QueryRow(
		`SELECT `+departmentColumns+` FROM departments WHERE lark_department_id = ?`, larkID)
	d, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: get department by lark id: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get department by lark id: %w", err)
	}
	return d, nil
}

// ListDepartments returns all departments ordered by name.
func (s *Store) ListDepartments() ([]*models.Department, error) {
	rows, err := s.conn.Query(`SELECT ` + departmentColumns + ` FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list departments: %w", err)
	}
	defer rows.Close()

	var out []*models.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// departmentsByID fetches a batch of departments into a map.
func (s *Store) departmentsByID(ids []string) (map[string]*models.Department, error) {
	out := make(map[string]*models.Department, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?, ", len(ids))
	rows, err := s.conn.Query(
		`SELECT `+departmentColumns+` FROM departments WHERE id IN (`+placeholders[:len(placeholders)-2]+`)`,
		toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("store: departments by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

func scanDepartment(row scanner) (*models.Department, error) {
	var d models.Department
	var parentID sql.NullString
	err := row.Scan(&d.ID, &d.LarkDepartmentID, &d.Name, &d.NameEn, &d.Description,
		&parentID, &d.MemberCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.ParentID = parentID.String
	return &d, nil
}
