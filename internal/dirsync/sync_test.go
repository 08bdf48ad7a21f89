package dirsync

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/linkhub/internal/testutil"
)

const sampleExport = `{
  "departments": [
    {"lark_department_id": "od-root", "name": "公司", "name_en": "Company", "member_count": 120},
    {"lark_department_id": "od-eng", "name": "工程", "name_en": "Engineering", "parent_lark_department_id": "od-root", "member_count": 40},
    {"lark_department_id": "", "name": "Nameless"},
    {"lark_department_id": "od-bad", "name": ""}
  ]
}`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "departments.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSyncFile(t *testing.T) {
	db := testutil.TestStore(t)
	path := writeExport(t, sampleExport)

	n, err := SyncFile(db, path, discard())
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if n != 2 {
		t.Errorf("synced = %d, want 2 (records without id or name skipped)", n)
	}

	root, err := db.GetDepartmentByLarkID("od-root")
	if err != nil {
		t.Fatalf("root not synced: %v", err)
	}
	if root.NameEn != "Company" || root.MemberCount != 120 {
		t.Errorf("root = %+v", root)
	}

	eng, err := db.GetDepartmentByLarkID("od-eng")
	if err != nil {
		t.Fatalf("child not synced: %v", err)
	}
	if eng.ParentID != root.ID {
		t.Errorf("parent = %q, want %q (resolved to internal id)", eng.ParentID, root.ID)
	}
}

func TestSyncFileIdempotent(t *testing.T) {
	db := testutil.TestStore(t)
	path := writeExport(t, sampleExport)

	if _, err := SyncFile(db, path, discard()); err != nil {
		t.Fatal(err)
	}
	first, err := db.GetDepartmentByLarkID("od-eng")
	if err != nil {
		t.Fatal(err)
	}

	// A second run updates in place instead of duplicating.
	updated := writeExport(t, `{"departments": [
		{"lark_department_id": "od-eng", "name": "平台工程", "name_en": "Platform Engineering", "member_count": 45}
	]}`)
	if _, err := SyncFile(db, updated, discard()); err != nil {
		t.Fatal(err)
	}

	eng, err := db.GetDepartmentByLarkID("od-eng")
	if err != nil {
		t.Fatal(err)
	}
	if eng.ID != first.ID {
		t.Errorf("upsert created a new row: %q -> %q", first.ID, eng.ID)
	}
	if eng.NameEn != "Platform Engineering" || eng.MemberCount != 45 {
		t.Errorf("fields not updated: %+v", eng)
	}

	depts, err := db.ListDepartments()
	if err != nil {
		t.Fatal(err)
	}
	if len(depts) != 2 {
		t.Errorf("departments = %d, want 2", len(depts))
	}
}

func TestSyncFileUnknownParent(t *testing.T) {
	db := testutil.TestStore(t)
	path := writeExport(t, `{"departments": [
		{"lark_department_id": "od-solo", "name": "Solo", "parent_lark_department_id": "od-gone"}
	]}`)

	// A dangling parent reference is logged and skipped, not fatal.
	n, err := SyncFile(db, path, discard())
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if n != 1 {
		t.Errorf("synced = %d, want 1", n)
	}
	solo, err := db.GetDepartmentByLarkID("od-solo")
	if err != nil {
		t.Fatal(err)
	}
	if solo.ParentID != "" {
		t.Errorf("parent = %q, want empty", solo.ParentID)
	}
}

func TestSyncFileErrors(t *testing.T) {
	db := testutil.TestStore(t)

	if _, err := SyncFile(db, filepath.Join(t.TempDir(), "missing.json"), discard()); err == nil {
		t.Error("missing file: want error")
	}
	if _, err := SyncFile(db, writeExport(t, "{not json"), discard()); err == nil {
		t.Error("malformed json: want error")
	}
}
