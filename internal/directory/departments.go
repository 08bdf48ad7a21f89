package directory

import (
	"context"

	"github.com/starford/linkhub/internal/models"
)

// ListDepartments returns every department, name-ordered.
func (s *Service) ListDepartments(_ context.Context) ([]*models.Department, error) {
	return s.db.ListDepartments()
}

// GetDepartment returns one department by id.
func (s *Service) GetDepartment(_ context.Context, id string) (*models.Department, error) {
	return s.db.GetDepartment(id)
}

// DepartmentTree returns departments as a forest, children nested under
// their parents. A department whose parent is missing surfaces as a
// root. Name ordering from the store carries through each level.
func (s *Service) DepartmentTree(ctx context.Context) ([]*models.Department, error) {
	depts, err := s.db.ListDepartments()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Department, len(depts))
	for _, d := range depts {
		byID[d.ID] = d
	}

	roots := []*models.Department{}
	for _, d := range depts {
		if d.ParentID != "" && d.ParentID != d.ID {
			if parent, ok := byID[d.ParentID]; ok {
				parent.Children = append(parent.Children, d)
				continue
			}
		}
		roots = append(roots, d)
	}
	return roots, nil
}
