// Package store provides the SQLite-backed data-access layer for the
// link directory, with optional FTS5 full-text link search.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/linkhub/internal/apperr"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS departments (
	id                 TEXT PRIMARY KEY,
	lark_department_id TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL,
	name_en            TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	parent_id          TEXT REFERENCES departments(id) ON DELETE SET NULL,
	member_count       INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	lark_user_id  TEXT UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	full_name     TEXT NOT NULL DEFAULT '',
	avatar_url    TEXT NOT NULL DEFAULT '',
	mobile        TEXT NOT NULL DEFAULT '',
	employee_no   TEXT NOT NULL DEFAULT '',
	job_title     TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'User',
	is_active     INTEGER NOT NULL DEFAULT 1,
	password_hash TEXT NOT NULL DEFAULT '',
	department_id TEXT REFERENCES departments(id) ON DELETE SET NULL,
	last_login_at DATETIME,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	slug          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	icon          TEXT NOT NULL DEFAULT '',
	color         TEXT NOT NULL DEFAULT '',
	parent_id     TEXT REFERENCES categories(id) ON DELETE SET NULL,
	department_id TEXT REFERENCES departments(id) ON DELETE SET NULL,
	visibility    TEXT NOT NULL DEFAULT 'Department',
	sort_order    INTEGER NOT NULL DEFAULT 0,
	link_count    INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(slug, department_id)
);

CREATE TABLE IF NOT EXISTS tags (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	color       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	usage_count INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	url              TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	short_code       TEXT UNIQUE,
	qr_code_url      TEXT NOT NULL DEFAULT '',
	metadata         TEXT NOT NULL DEFAULT '{}',
	source           TEXT NOT NULL DEFAULT '',
	language         TEXT NOT NULL DEFAULT '',
	category_id      TEXT REFERENCES categories(id) ON DELETE SET NULL,
	department_id    TEXT NOT NULL REFERENCES departments(id),
	owner_id         TEXT NOT NULL REFERENCES profiles(id),
	created_by       TEXT NOT NULL REFERENCES profiles(id),
	visibility       TEXT NOT NULL DEFAULT 'Department',
	status           TEXT NOT NULL DEFAULT 'Pending',
	click_count      INTEGER NOT NULL DEFAULT 0,
	view_count       INTEGER NOT NULL DEFAULT 0,
	last_accessed_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS link_tags (
	link_id TEXT NOT NULL REFERENCES links(id) ON DELETE CASCADE,
	tag_id  TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE(link_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_links_department ON links(department_id);
CREATE INDEX IF NOT EXISTS idx_links_category   ON links(category_id);
CREATE INDEX IF NOT EXISTS idx_links_status     ON links(status);
CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
CREATE INDEX IF NOT EXISTS idx_link_tags_link   ON link_tags(link_id);
CREATE INDEX IF NOT EXISTS idx_link_tags_tag    ON link_tags(tag_id);
CREATE INDEX IF NOT EXISTS idx_categories_dept  ON categories(department_id);
`

// Derived counters (tags.usage_count, categories.link_count) are
// maintained inside the database so that every write path, including FK
// cascades, keeps them consistent.
const triggerSchemaSQL = `
CREATE TRIGGER IF NOT EXISTS trg_link_tags_insert AFTER INSERT ON link_tags
BEGIN
	UPDATE tags SET usage_count = usage_count + 1 WHERE id = NEW.tag_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_link_tags_delete AFTER DELETE ON link_tags
BEGIN
	UPDATE tags SET usage_count = usage_count - 1 WHERE id = OLD.tag_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_links_insert AFTER INSERT ON links
WHEN NEW.category_id IS NOT NULL
BEGIN
	UPDATE categories SET link_count = link_count + 1 WHERE id = NEW.category_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_links_delete AFTER DELETE ON links
WHEN OLD.category_id IS NOT NULL
BEGIN
	UPDATE categories SET link_count = link_count - 1 WHERE id = OLD.category_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_links_recategorize AFTER UPDATE OF category_id ON links
WHEN OLD.category_id IS NOT NEW.category_id
BEGIN
	UPDATE categories SET link_count = link_count - 1 WHERE id = OLD.category_id;
	UPDATE categories SET link_count = link_count + 1 WHERE id = NEW.category_id;
END;
`

// Store wraps a sql.DB with link-directory operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if _, err := conn.Exec(triggerSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply trigger schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure (slug or short-code collision).
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == sqlite3.ErrConstraint &&
		(serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// mapInsertErr translates unique violations to the shared sentinel.
func mapInsertErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("store: %s: %w", op, apperr.ErrAlreadyExists)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}
