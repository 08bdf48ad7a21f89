//go:build !sqlite_fts5

package store

import "database/sql"

const ftsEnabled = false

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; free-text search uses the LIKE predicate below.
	return nil
}

func ftsUpsertLink(_ *sql.Tx, _, _, _, _ string) error { return nil }

func ftsDeleteLink(_ *sql.Tx, _ string) {}

// searchPredicate performs case-insensitive substring matching over
// title, description, and associated tag names (fallback when FTS5 is
// not compiled in).
func searchPredicate(query string) (string, []any) {
	like := "%" + query + "%"
	return `(l.title LIKE ? OR l.description LIKE ? OR EXISTS (
		SELECT 1 FROM link_tags lt JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id = l.id AND t.name LIKE ?))`,
		[]any{like, like, like}
}
