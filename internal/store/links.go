package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

const linkColumns = `id, title, url, description, notes, short_code, qr_code_url,
	metadata, source, language, category_id, department_id, owner_id, created_by,
	visibility, status, click_count, view_count, last_accessed_at, created_at, updated_at`

// scopePredicate returns the visibility-scope SQL fragment for the given
// caller. Admins see every row; everyone else sees public links, links
// scoped to their own department, and their own private links.
func scopePredicate(ident models.Identity) (string, []any) {
	if ident.IsAdmin() {
		return "1 = 1", nil
	}
	return `(l.visibility = 'Public'
		OR (l.visibility IN ('Department', 'Team') AND l.department_id = ?)
		OR (l.visibility = 'Private' AND l.owner_id = ?))`,
		[]any{ident.DepartmentID, ident.ProfileID}
}

// CreateLink inserts a link and its tag associations in one transaction.
// Unknown tag ids are silently skipped by the association step. The link
// must arrive with id and timestamps already assigned.
func (s *Store) CreateLink(link *models.Link, tagIDs []string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	meta, err := json.Marshal(metadataOrEmpty(link.Metadata))
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO links (id, title, url, description, notes, short_code, qr_code_url,
			metadata, source, language, category_id, department_id, owner_id, created_by,
			visibility, status, click_count, view_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, link.ID, link.Title, link.URL, link.Description, link.Notes,
		nullable(link.ShortCode), link.QRCodeURL, string(meta), link.Source, link.Language,
		nullable(link.CategoryID), link.DepartmentID, link.OwnerID, link.CreatedByID,
		string(link.Visibility), string(link.Status), link.CreatedAt, link.UpdatedAt)
	if err != nil {
		return mapInsertErr("insert link", err)
	}

	if err := insertAssociations(tx, link.ID, tagIDs); err != nil {
		return err
	}
	if err := refreshLinkFTS(tx, link.ID, link.Title, link.Description); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateLink writes the full link row. When tagIDs is non-nil it fully
// replaces the association set (delete-all-then-insert), even when empty.
func (s *Store) UpdateLink(link *models.Link, tagIDs *[]string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	meta, err := json.Marshal(metadataOrEmpty(link.Metadata))
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE links SET title = ?, url = ?, description = ?, notes = ?, short_code = ?,
			qr_code_url = ?, metadata = ?, source = ?, language = ?, category_id = ?,
			visibility = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, link.Title, link.URL, link.Description, link.Notes, nullable(link.ShortCode),
		link.QRCodeURL, string(meta), link.Source, link.Language, nullable(link.CategoryID),
		string(link.Visibility), string(link.Status), link.UpdatedAt, link.ID)
	if err != nil {
		return mapInsertErr("update link", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: update link %s: %w", link.ID, apperr.ErrNotFound)
	}

	if tagIDs != nil {
		if _, err := tx.Exec(`DELETE FROM link_tags WHERE link_id = ?`, link.ID); err != nil {
			return fmt.Errorf("store: clear associations: %w", err)
		}
		if err := insertAssociations(tx, link.ID, *tagIDs); err != nil {
			return err
		}
	}
	if err := refreshLinkFTS(tx, link.ID, link.Title, link.Description); err != nil {
		return err
	}

	return tx.Commit()
}

// insertAssociations inserts link_tags rows for every tagID that resolves
// to an existing tag. Unknown ids are dropped, not rejected.
func insertAssociations(tx *sql.Tx, linkID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO link_tags (link_id, tag_id)
		SELECT ?, id FROM tags WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("store: prepare association insert: %w", err)
	}
	defer stmt.Close()
	for _, tagID := range tagIDs {
		if _, err := stmt.Exec(linkID, tagID); err != nil {
			return fmt.Errorf("store: insert association: %w", err)
		}
	}
	return nil
}

// refreshLinkFTS re-derives the search-index entry for a link from its
// title, description, and current tag names. No-op without FTS5.
func refreshLinkFTS(tx *sql.Tx, linkID, title, description string) error {
	if !ftsEnabled {
		return nil
	}
	var tagNames sql.NullString
	err := tx.QueryRow(`
		SELECT group_concat(t.name, ' ')
		FROM link_tags lt JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id = ?
	`, linkID).Scan(&tagNames)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("store: collect tag names: %w", err)
	}
	return ftsUpsertLink(tx, linkID, title, description, tagNames.String)
}

// DeleteLink removes a link; its tag associations cascade. Returns
// ErrNotFound when the id does not exist.
func (s *Store) DeleteLink(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: delete link %s: %w", id, apperr.ErrNotFound)
	}
	ftsDeleteLink(tx, id)

	return tx.Commit()
}

// RecordClick atomically increments the click counter and stamps the
// access time. The increment happens inside the database, so concurrent
// calls never lose updates.
func (s *Store) RecordClick(id string, at time.Time) error {
	res, err := s.conn.Exec(`
		UPDATE links SET click_count = click_count + 1, last_accessed_at = ?
		WHERE id = ?
	`, at, id)
	if err != nil {
		return fmt.Errorf("store: record click: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: record click %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// RecordView atomically increments the view counter.
func (s *Store) RecordView(id string) error {
	res, err := s.conn.Exec(`UPDATE links SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: record view: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: record view %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetLink returns one fully-joined link visible to the caller.
func (s *Store) GetLink(ident models.Identity, id string) (*models.Link, error) {
	return s.getLinkWhere(ident, "l.id = ?", id)
}

// GetLinkByShortCode returns one fully-joined link by its short code.
func (s *Store) GetLinkByShortCode(ident models.Identity, code string) (*models.Link, error) {
	return s.getLinkWhere(ident, "l.short_code = ?", code)
}

func (s *Store) getLinkWhere(ident models.Identity, cond string, arg any) (*models.Link, error) {
	scope, scopeArgs := scopePredicate(ident)
	args := append([]any{arg}, scopeArgs...)
	row := s.conn.QueryRow(
		`SELECT `+prefixColumns("l")+` FROM links l WHERE `+cond+` AND `+scope, args...)
	link, err := scanLink(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: get link: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get link: %w", err)
	}
	if err := s.loadRelations([]*models.Link{link}); err != nil {
		return nil, err
	}
	return link, nil
}

// SearchLinks applies the filter contract: equality filters, OR-semantics
// tag filter, free-text matching, deterministic (sort, id) ordering, and
// a pre-pagination total. The filter must already be normalized.
func (s *Store) SearchLinks(ident models.Identity, f models.LinkFilter) ([]*models.Link, int, error) {
	where := []string{}
	args := []any{}

	scope, scopeArgs := scopePredicate(ident)
	where = append(where, scope)
	args = append(args, scopeArgs...)

	if f.Query != "" {
		pred, predArgs := searchPredicate(f.Query)
		where = append(where, pred)
		args = append(args, predArgs...)
	}
	if f.CategoryID != "" {
		where = append(where, "l.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.DepartmentID != "" {
		where = append(where, "l.department_id = ?")
		args = append(args, f.DepartmentID)
	}
	if f.Status != "" {
		where = append(where, "l.status = ?")
		args = append(args, string(f.Status))
	}
	if f.Visibility != "" {
		where = append(where, "l.visibility = ?")
		args = append(args, string(f.Visibility))
	}
	if len(f.TagIDs) > 0 {
		placeholders := strings.Repeat("?, ", len(f.TagIDs))
		where = append(where, `EXISTS (
			SELECT 1 FROM link_tags lt
			WHERE lt.link_id = l.id AND lt.tag_id IN (`+placeholders[:len(placeholders)-2]+`))`)
		for _, id := range f.TagIDs {
			args = append(args, id)
		}
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.conn.QueryRow(`SELECT count(*) FROM links l WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count links: %w", err)
	}

	// The id tie-break keeps equal sort keys stable across pages.
	order := fmt.Sprintf("l.%s %s, l.id %s", f.SortBy, strings.ToUpper(f.SortOrder), strings.ToUpper(f.SortOrder))
	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := s.conn.Query(
		`SELECT `+prefixColumns("l")+` FROM links l WHERE `+cond+
			` ORDER BY `+order+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: search links: %w", err)
	}
	defer rows.Close()

	var out []*models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.loadRelations(out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func prefixColumns(alias string) string {
	cols := strings.Split(linkColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func scanLink(row scanner) (*models.Link, error) {
	var (
		l          models.Link
		shortCode  sql.NullString
		categoryID sql.NullString
		meta       string
		lastAccess sql.NullTime
	)
	err := row.Scan(&l.ID, &l.Title, &l.URL, &l.Description, &l.Notes, &shortCode,
		&l.QRCodeURL, &meta, &l.Source, &l.Language, &categoryID, &l.DepartmentID,
		&l.OwnerID, &l.CreatedByID, &l.Visibility, &l.Status, &l.ClickCount,
		&l.ViewCount, &lastAccess, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.ShortCode = shortCode.String
	l.CategoryID = categoryID.String
	if lastAccess.Valid {
		t := lastAccess.Time
		l.LastAccessedAt = &t
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &l.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	l.Tags = []models.Tag{}
	return &l, nil
}

// loadRelations populates category, department, owner, creator, and tags
// for an already-scanned page of links.
func (s *Store) loadRelations(links []*models.Link) error {
	if len(links) == 0 {
		return nil
	}

	byID := make(map[string]*models.Link, len(links))
	catIDs := map[string]struct{}{}
	deptIDs := map[string]struct{}{}
	profIDs := map[string]struct{}{}
	for _, l := range links {
		byID[l.ID] = l
		if l.CategoryID != "" {
			catIDs[l.CategoryID] = struct{}{}
		}
		deptIDs[l.DepartmentID] = struct{}{}
		profIDs[l.OwnerID] = struct{}{}
		profIDs[l.CreatedByID] = struct{}{}
	}

	cats, err := s.categoriesByID(keys(catIDs))
	if err != nil {
		return err
	}
	depts, err := s.departmentsByID(keys(deptIDs))
	if err != nil {
		return err
	}
	profs, err := s.profilesByID(keys(profIDs))
	if err != nil {
		return err
	}
	for _, l := range links {
		l.Category = cats[l.CategoryID]
		l.Department = depts[l.DepartmentID]
		l.Owner = profs[l.OwnerID]
		l.CreatedBy = profs[l.CreatedByID]
	}

	linkIDs := make([]string, 0, len(links))
	for _, l := range links {
		linkIDs = append(linkIDs, l.ID)
	}
	placeholders := strings.Repeat("?, ", len(linkIDs))
	rows, err := s.conn.Query(`
		SELECT lt.link_id, t.id, t.name, t.slug, t.color, t.description, t.usage_count, t.created_at
		FROM link_tags lt JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id IN (`+placeholders[:len(placeholders)-2]+`)
		ORDER BY t.name
	`, toAnySlice(linkIDs)...)
	if err != nil {
		return fmt.Errorf("store: load tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var linkID string
		var t models.Tag
		if err := rows.Scan(&linkID, &t.ID, &t.Name, &t.Slug, &t.Color, &t.Description, &t.UsageCount, &t.CreatedAt); err != nil {
			return err
		}
		if l, ok := byID[linkID]; ok {
			l.Tags = append(l.Tags, t)
		}
	}
	return rows.Err()
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// nullable maps empty strings to SQL NULL for optional FK and unique
// columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
