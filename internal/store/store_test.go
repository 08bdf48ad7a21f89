package store

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "linkhub-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedDept(t *testing.T, s *Store, name string) *models.Department {
	t.Helper()
	now := time.Now().UTC()
	d := &models.Department{
		ID:               uuid.NewString(),
		LarkDepartmentID: "od-" + uuid.NewString(),
		Name:             name,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.UpsertDepartment(d); err != nil {
		t.Fatalf("UpsertDepartment: %v", err)
	}
	return d
}

func seedProfile(t *testing.T, s *Store, deptID string, role models.Role) *models.Profile {
	t.Helper()
	now := time.Now().UTC()
	p := &models.Profile{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
		DepartmentID: deptID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateProfile(p, ""); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	return p
}

func newLink(owner *models.Profile, title string) *models.Link {
	now := time.Now().UTC()
	return &models.Link{
		ID:           uuid.NewString(),
		Title:        title,
		URL:          "https://example.com/" + uuid.NewString(),
		DepartmentID: owner.DepartmentID,
		OwnerID:      owner.ID,
		CreatedByID:  owner.ID,
		Visibility:   models.VisibilityDepartment,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func adminIdent() models.Identity {
	return models.Identity{Role: models.RoleAdmin}
}

func identFor(p *models.Profile) models.Identity {
	return models.Identity{ProfileID: p.ID, DepartmentID: p.DepartmentID, Role: p.Role}
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	for _, table := range []string{"departments", "profiles", "categories", "tags", "links", "link_tags"} {
		var count int
		if err := s.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}
