package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/slug"
)

// ListCategories returns categories ordered by sort order, optionally
// scoped to one department.
func (s *Service) ListCategories(_ context.Context, departmentID string) ([]*models.Category, error) {
	cats, err := s.db.ListCategories(departmentID)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []*models.Category{}
	}
	return cats, nil
}

// GetCategory returns one category by id.
func (s *Service) GetCategory(_ context.Context, id string) (*models.Category, error) {
	return s.db.GetCategory(id)
}

// GetCategoryBySlug returns one category by slug, optionally scoped to a
// department (slugs are unique per department, not globally).
func (s *Service) GetCategoryBySlug(_ context.Context, slugStr, departmentID string) (*models.Category, error) {
	return s.db.GetCategoryBySlug(slugStr, departmentID)
}

// CategoryTree builds a forest from the flat category list. A category
// whose parent does not resolve within the same result set becomes a
// root: orphaned subtrees surface rather than being dropped.
func (s *Service) CategoryTree(ctx context.Context, departmentID string) ([]*models.Category, error) {
	cats, err := s.ListCategories(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	roots := []*models.Category{}
	for _, c := range cats {
		if c.ParentID != "" {
			if parent, ok := byID[c.ParentID]; ok {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots, nil
}

// CreateCategory creates a category scoped to the caller's department.
// The slug is derived from the name; a collision within the department
// scope fails with ErrConflict.
func (s *Service) CreateCategory(_ context.Context, ident models.Identity, req models.CreateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}
	if err := requireDepartment(ident.ProfileID, ident.DepartmentID); err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityDepartment
	}

	now := time.Now().UTC()
	cat := &models.Category{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		Icon:         req.Icon,
		Color:        req.Color,
		ParentID:     req.ParentID,
		DepartmentID: ident.DepartmentID,
		Visibility:   visibility,
		SortOrder:    req.SortOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.CreateCategory(cat); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, fmt.Errorf("category slug %q taken in department: %w", cat.Slug, apperr.ErrConflict)
		}
		return nil, err
	}
	return s.db.GetCategory(cat.ID)
}

// UpdateCategory applies a partial patch; renames re-derive the slug.
func (s *Service) UpdateCategory(_ context.Context, id string, patch models.UpdateCategoryRequest) (*models.Category, error) {
	if err := patch.Validate(); err != nil {
		return nil, validationErr(err)
	}

	cat, err := s.db.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		cat.Name = *patch.Name
		cat.Slug = slug.Make(*patch.Name)
	}
	if patch.Description != nil {
		cat.Description = *patch.Description
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
	}
	if patch.ParentID != nil {
		cat.ParentID = *patch.ParentID
	}
	if patch.Visibility != nil {
		cat.Visibility = *patch.Visibility
	}
	if patch.SortOrder != nil {
		cat.SortOrder = *patch.SortOrder
	}
	cat.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdateCategory(cat); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, fmt.Errorf("category slug %q taken in department: %w", cat.Slug, apperr.ErrConflict)
		}
		return nil, err
	}
	return s.db.GetCategory(id)
}

// DeleteCategory removes a category. Links referencing it keep existing
// with their category reference nulled out by the store.
func (s *Service) DeleteCategory(_ context.Context, id string) error {
	return s.db.DeleteCategory(id)
}

// ReorderCategories assigns sortOrder = positional index for each id in
// the supplied order, as a sequence of independent updates. Unknown ids
// abort with ErrNotFound; positions already applied stay applied.
func (s *Service) ReorderCategories(_ context.Context, orderedIDs []string) error {
	for i, id := range orderedIDs {
		if err := s.db.SetCategorySortOrder(id, i); err != nil {
			return fmt.Errorf("reorder position %d: %w", i, err)
		}
	}
	return nil
}
