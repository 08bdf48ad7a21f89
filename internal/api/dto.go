package api

import "github.com/starford/linkhub/internal/models"

// ReorderRequest is the request body for category reordering. Positions
// are assigned from slice order.
type ReorderRequest struct {
	CategoryIDs []string `json:"category_ids" validate:"required"`
}

// LinkDetail is the full link response type (aliased from the domain layer).
type LinkDetail = models.Link

// SearchLinksResponse wraps paginated link search results (aliased from
// the domain layer).
type SearchLinksResponse = models.SearchLinksResponse
