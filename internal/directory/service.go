// Package directory implements the link directory service: link,
// category, and tag operations over the backing store, with visibility
// and status semantics.
//
// Every operation takes the caller's Identity as an explicit argument;
// the service holds no ambient user state. Validation runs before any
// store call; store failures propagate wrapped, never swallowed.
package directory

import (
	"fmt"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/store"
)

// Service coordinates directory operations over the backing store.
type Service struct {
	db store.Directory
}

// NewService creates a new directory service.
func NewService(db store.Directory) *Service {
	return &Service{db: db}
}

// validationErr wraps an ozzo-validation failure with the shared
// sentinel so the API layer can classify it.
func validationErr(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
}

// requireDepartment resolves the caller to a department-bearing profile
// or fails with ErrUnauthorized.
func requireDepartment(profileID, departmentID string) error {
	if profileID == "" {
		return fmt.Errorf("caller identity not resolved: %w", apperr.ErrUnauthorized)
	}
	if departmentID == "" {
		return fmt.Errorf("caller has no department: %w", apperr.ErrUnauthorized)
	}
	return nil
}
