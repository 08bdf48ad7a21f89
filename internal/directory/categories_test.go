package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

func TestCreateCategorySlug(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{
		Name: "Engineering Resources",
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Slug != "engineering-resources" {
		t.Errorf("slug = %q, want engineering-resources", cat.Slug)
	}
	if cat.DepartmentID != fx.dept.ID {
		t.Errorf("department not inferred: %q", cat.DepartmentID)
	}
	if cat.Visibility != models.VisibilityDepartment {
		t.Errorf("default visibility = %q", cat.Visibility)
	}

	// Same name in the same department collides.
	if _, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{
		Name: "Engineering Resources",
	}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate name: err = %v, want ErrConflict", err)
	}
}

func TestUpdateCategoryRenameReslugs(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Old Name"})
	if err != nil {
		t.Fatal(err)
	}

	newName := "Fresh Name"
	got, err := svc.UpdateCategory(ctx, cat.ID, models.UpdateCategoryRequest{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if got.Slug != "fresh-name" {
		t.Errorf("slug after rename = %q, want fresh-name", got.Slug)
	}

	// Patching another field leaves the slug alone.
	desc := "just a description"
	got, err = svc.UpdateCategory(ctx, cat.ID, models.UpdateCategoryRequest{Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "fresh-name" || got.Description != desc {
		t.Errorf("patch result: slug=%q desc=%q", got.Slug, got.Description)
	}
}

func TestCategoryTree(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Root"})
	if err != nil {
		t.Fatal(err)
	}
	child, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Child", ParentID: root.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Grandchild", ParentID: child.ID}); err != nil {
		t.Fatal(err)
	}

	tree, err := svc.CategoryTree(ctx, fx.dept.ID)
	if err != nil {
		t.Fatalf("CategoryTree: %v", err)
	}
	if len(tree) != 1 || tree[0].Name != "Root" {
		t.Fatalf("roots = %d, want 1 (Root)", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Child" {
		t.Fatalf("Root children wrong: %+v", tree[0].Children)
	}
	if len(tree[0].Children[0].Children) != 1 {
		t.Fatalf("Child children wrong")
	}
}

func TestCategoryTreeOrphanBecomesRoot(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Parent"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: "Orphan", ParentID: parent.ID}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCategory(ctx, parent.ID); err != nil {
		t.Fatal(err)
	}

	tree, err := svc.CategoryTree(ctx, fx.dept.ID)
	if err != nil {
		t.Fatalf("CategoryTree: %v", err)
	}
	if len(tree) != 1 || tree[0].Name != "Orphan" {
		t.Errorf("orphan not promoted to root: %d roots", len(tree))
	}
}

func TestReorderCategories(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"One", "Two", "Three"} {
		cat, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, cat.ID)
	}

	// Reverse the order.
	reversed := []string{ids[2], ids[1], ids[0]}
	if err := svc.ReorderCategories(ctx, reversed); err != nil {
		t.Fatalf("ReorderCategories: %v", err)
	}

	cats, err := svc.ListCategories(ctx, fx.dept.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Three", "Two", "One"}
	for i, name := range want {
		if cats[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, cats[i].Name, name)
		}
	}

	// Unknown id aborts mid-sequence.
	if err := svc.ReorderCategories(ctx, []string{ids[0], "missing"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("reorder with unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, fx := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, fx.managerIdent(), models.CreateCategoryRequest{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty name: err = %v, want ErrValidation", err)
	}
	orphan := models.Identity{ProfileID: "p", Role: models.RoleUser}
	if _, err := svc.CreateCategory(ctx, orphan, models.CreateCategoryRequest{Name: "X"}); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("no department: err = %v, want ErrUnauthorized", err)
	}
}
