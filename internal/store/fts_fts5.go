//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
	"strings"
)

const ftsEnabled = true

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS links_fts USING fts5(
			link_id UNINDEXED,
			title,
			description,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsertLink(tx *sql.Tx, linkID, title, description, tags string) error {
	_, _ = tx.Exec(`DELETE FROM links_fts WHERE link_id = ?`, linkID)
	_, err := tx.Exec(`INSERT INTO links_fts (link_id, title, description, tags) VALUES (?, ?, ?, ?)`,
		linkID, title, description, tags)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteLink(tx *sql.Tx, linkID string) {
	_, _ = tx.Exec(`DELETE FROM links_fts WHERE link_id = ?`, linkID)
}

// searchPredicate matches links whose FTS entry matches the query. The
// title LIKE arm keeps the contract that free-text results are a
// superset of exact substring matches on title (FTS5 matches whole
// tokens only). Queries with no quotable terms, such as bare
// whitespace, would make MATCH '' a syntax error, so those fall back
// to the LIKE arm alone.
func searchPredicate(query string) (string, []any) {
	quoted := ftsQuote(query)
	if quoted == "" {
		return `l.title LIKE ?`, []any{"%" + query + "%"}
	}
	return `(l.id IN (SELECT link_id FROM links_fts WHERE links_fts MATCH ?)
		OR l.title LIKE ?)`,
		[]any{quoted, "%" + query + "%"}
}

// ftsQuote turns raw user input into a safe FTS5 match expression by
// quoting each whitespace-separated term.
func ftsQuote(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
