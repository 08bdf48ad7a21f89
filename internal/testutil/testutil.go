// Package testutil provides shared test helpers for setting up stores
// and directory fixtures.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically
// cleaned up.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "linkhub-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedDepartment inserts a department and returns it.
func SeedDepartment(t *testing.T, db *store.Store, name string) *models.Department {
	t.Helper()
	now := time.Now().UTC()
	dept := &models.Department{
		ID:               uuid.NewString(),
		LarkDepartmentID: "od-" + uuid.NewString(),
		Name:             name,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.UpsertDepartment(dept); err != nil {
		t.Fatal(err)
	}
	return dept
}

// SeedProfile inserts a profile in the given department and returns it.
func SeedProfile(t *testing.T, db *store.Store, departmentID string, role models.Role) *models.Profile {
	t.Helper()
	now := time.Now().UTC()
	p := &models.Profile{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.CreateProfile(p, ""); err != nil {
		t.Fatal(err)
	}
	return p
}

// Identity builds an Identity for a seeded profile.
func Identity(p *models.Profile) models.Identity {
	return models.Identity{
		ProfileID:    p.ID,
		DepartmentID: p.DepartmentID,
		Role:         p.Role,
	}
}
