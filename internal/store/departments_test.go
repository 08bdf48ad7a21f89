package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

func TestUpsertDepartmentIdempotent(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	d := &models.Department{
		ID:               uuid.NewString(),
		LarkDepartmentID: "od-1",
		Name:             "Engineering",
		MemberCount:      10,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.UpsertDepartment(d); err != nil {
		t.Fatalf("UpsertDepartment: %v", err)
	}

	// Second upsert with the same external id updates in place.
	d2 := &models.Department{
		ID:               uuid.NewString(),
		LarkDepartmentID: "od-1",
		Name:             "Engineering & Platform",
		MemberCount:      12,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.UpsertDepartment(d2); err != nil {
		t.Fatalf("second UpsertDepartment: %v", err)
	}

	depts, err := s.ListDepartments()
	if err != nil {
		t.Fatalf("ListDepartments: %v", err)
	}
	if len(depts) != 1 {
		t.Fatalf("got %d departments, want 1", len(depts))
	}
	if depts[0].Name != "Engineering & Platform" || depts[0].MemberCount != 12 {
		t.Errorf("upsert did not update: %+v", depts[0])
	}
	// The original row id survives the update.
	if depts[0].ID != d.ID {
		t.Errorf("upsert replaced row id: got %q, want %q", depts[0].ID, d.ID)
	}
}

func TestSetDepartmentParent(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()
	parent := &models.Department{ID: uuid.NewString(), LarkDepartmentID: "od-p", Name: "Org", CreatedAt: now, UpdatedAt: now}
	child := &models.Department{ID: uuid.NewString(), LarkDepartmentID: "od-c", Name: "Team", CreatedAt: now, UpdatedAt: now}
	for _, d := range []*models.Department{parent, child} {
		if err := s.UpsertDepartment(d); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.SetDepartmentParent("od-c", "od-p"); err != nil {
		t.Fatalf("SetDepartmentParent: %v", err)
	}
	got, err := s.GetDepartmentByLarkID("od-c")
	if err != nil {
		t.Fatalf("GetDepartmentByLarkID: %v", err)
	}
	if got.ParentID != parent.ID {
		t.Errorf("parent_id = %q, want %q", got.ParentID, parent.ID)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")

	now := time.Now().UTC()
	p := &models.Profile{
		ID:           uuid.NewString(),
		LarkUserID:   "ou-1",
		Email:        "dev@example.com",
		FullName:     "Dev One",
		Role:         models.RoleUser,
		IsActive:     true,
		DepartmentID: dept.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateProfile(p, "hash-value"); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	got, err := s.GetProfileByEmail("dev@example.com")
	if err != nil {
		t.Fatalf("GetProfileByEmail: %v", err)
	}
	if got.ID != p.ID || got.DepartmentID != dept.ID || !got.IsActive {
		t.Errorf("profile mismatch: %+v", got)
	}
	if got.LastLoginAt != nil {
		t.Errorf("fresh profile has last_login_at")
	}

	byLark, err := s.GetProfileByLarkUserID("ou-1")
	if err != nil {
		t.Fatalf("GetProfileByLarkUserID: %v", err)
	}
	if byLark.ID != p.ID {
		t.Errorf("lark lookup returned %q", byLark.ID)
	}

	hash, err := s.PasswordHash(p.ID)
	if err != nil {
		t.Fatalf("PasswordHash: %v", err)
	}
	if hash != "hash-value" {
		t.Errorf("hash = %q", hash)
	}

	if err := s.TouchLastLogin(p.ID, now); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}
	got, _ = s.GetProfile(p.ID)
	if got.LastLoginAt == nil {
		t.Errorf("last_login_at not stamped")
	}
}

func TestDuplicateEmail(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()
	a := &models.Profile{ID: uuid.NewString(), Email: "dup@example.com", Role: models.RoleUser, IsActive: true, CreatedAt: now, UpdatedAt: now}
	b := &models.Profile{ID: uuid.NewString(), Email: "dup@example.com", Role: models.RoleUser, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateProfile(a, ""); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := s.CreateProfile(b, ""); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate email: err = %v, want ErrAlreadyExists", err)
	}
}
