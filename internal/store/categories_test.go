package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

func seedCategory(t *testing.T, s *Store, deptID, name, slug string) *models.Category {
	t.Helper()
	now := time.Now().UTC()
	c := &models.Category{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         slug,
		DepartmentID: deptID,
		Visibility:   models.VisibilityDepartment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateCategory(c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func TestCategorySlugUniquePerDepartment(t *testing.T) {
	s := testStore(t)
	deptA := seedDept(t, s, "A")
	deptB := seedDept(t, s, "B")

	seedCategory(t, s, deptA.ID, "Tools", "tools")

	// Same slug in a different department is fine.
	seedCategory(t, s, deptB.ID, "Tools", "tools")

	// Same slug in the same department collides.
	now := time.Now().UTC()
	dup := &models.Category{ID: uuid.NewString(), Name: "Tools Again", Slug: "tools",
		DepartmentID: deptA.ID, Visibility: models.VisibilityDepartment, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateCategory(dup); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate slug in dept: err = %v, want ErrAlreadyExists", err)
	}
}

func TestLinkCountTrigger(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)
	catA := seedCategory(t, s, dept.ID, "A", "a")
	catB := seedCategory(t, s, dept.ID, "B", "b")

	link := newLink(owner, "Counted")
	link.CategoryID = catA.ID
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	got, _ := s.GetCategory(catA.ID)
	if got.LinkCount != 1 {
		t.Fatalf("link_count after insert = %d, want 1", got.LinkCount)
	}

	// Recategorize moves the count.
	link.CategoryID = catB.ID
	if err := s.UpdateLink(link, nil); err != nil {
		t.Fatalf("UpdateLink: %v", err)
	}
	gotA, _ := s.GetCategory(catA.ID)
	gotB, _ := s.GetCategory(catB.ID)
	if gotA.LinkCount != 0 || gotB.LinkCount != 1 {
		t.Fatalf("after move: a=%d b=%d, want 0/1", gotA.LinkCount, gotB.LinkCount)
	}

	// Delete decrements.
	if err := s.DeleteLink(link.ID); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	gotB, _ = s.GetCategory(catB.ID)
	if gotB.LinkCount != 0 {
		t.Fatalf("link_count after delete = %d, want 0", gotB.LinkCount)
	}
}

func TestDeleteCategoryKeepsLinks(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")
	owner := seedProfile(t, s, dept.ID, models.RoleUser)
	cat := seedCategory(t, s, dept.ID, "Doomed", "doomed")

	link := newLink(owner, "Survivor")
	link.CategoryID = cat.ID
	if err := s.CreateLink(link, nil); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	if err := s.DeleteCategory(cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	got, err := s.GetLink(adminIdent(), link.ID)
	if err != nil {
		t.Fatalf("link gone after category delete: %v", err)
	}
	if got.CategoryID != "" {
		t.Errorf("category_id = %q, want empty", got.CategoryID)
	}

	if err := s.DeleteCategory(cat.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestListCategoriesOrder(t *testing.T) {
	s := testStore(t)
	dept := seedDept(t, s, "Eng")

	c1 := seedCategory(t, s, dept.ID, "Zeta", "zeta")
	c2 := seedCategory(t, s, dept.ID, "Alpha", "alpha")
	c3 := seedCategory(t, s, dept.ID, "Mid", "mid")

	if err := s.SetCategorySortOrder(c1.ID, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCategorySortOrder(c3.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCategorySortOrder(c2.ID, 2); err != nil {
		t.Fatal(err)
	}

	cats, err := s.ListCategories(dept.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	want := []string{"Zeta", "Mid", "Alpha"}
	if len(cats) != len(want) {
		t.Fatalf("got %d categories, want %d", len(cats), len(want))
	}
	for i, name := range want {
		if cats[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, cats[i].Name, name)
		}
	}

	if err := s.SetCategorySortOrder("missing", 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetCategorySortOrder missing: err = %v, want ErrNotFound", err)
	}
}

func TestGetCategoryBySlugScoped(t *testing.T) {
	s := testStore(t)
	deptA := seedDept(t, s, "A")
	deptB := seedDept(t, s, "B")
	a := seedCategory(t, s, deptA.ID, "Tools", "tools")
	b := seedCategory(t, s, deptB.ID, "Tools", "tools")

	got, err := s.GetCategoryBySlug("tools", deptB.ID)
	if err != nil {
		t.Fatalf("GetCategoryBySlug: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("scoped lookup returned %q, want %q", got.ID, b.ID)
	}

	// Unscoped lookup still resolves (first match).
	got, err = s.GetCategoryBySlug("tools", "")
	if err != nil {
		t.Fatalf("GetCategoryBySlug unscoped: %v", err)
	}
	if got.ID != a.ID && got.ID != b.ID {
		t.Errorf("unscoped lookup returned unknown id %q", got.ID)
	}
}
