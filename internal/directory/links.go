package directory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/models"
)

// SearchLinks applies the search/filter contract and returns one page of
// fully-joined links plus the pre-pagination total. Zero matches yield
// an empty page with the correct total, never an error.
func (s *Service) SearchLinks(_ context.Context, ident models.Identity, f models.LinkFilter) (*models.SearchLinksResponse, error) {
	f.Normalize()
	links, total, err := s.db.SearchLinks(ident, f)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []*models.Link{}
	}
	return &models.SearchLinksResponse{
		Links:  links,
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}, nil
}

// GetLink returns one fully-joined link visible to the caller.
func (s *Service) GetLink(_ context.Context, ident models.Identity, id string) (*models.Link, error) {
	return s.db.GetLink(ident, id)
}

// GetLinkByShortCode returns one fully-joined link by short code.
func (s *Service) GetLinkByShortCode(_ context.Context, ident models.Identity, code string) (*models.Link, error) {
	return s.db.GetLinkByShortCode(ident, code)
}

// RecentLinks returns the newest Active links visible to the caller.
func (s *Service) RecentLinks(ctx context.Context, ident models.Identity, limit int) ([]*models.Link, error) {
	return s.feed(ctx, ident, models.SortByCreatedAt, limit)
}

// PopularLinks returns the most-clicked Active links visible to the caller.
func (s *Service) PopularLinks(ctx context.Context, ident models.Identity, limit int) ([]*models.Link, error) {
	return s.feed(ctx, ident, models.SortByClickCount, limit)
}

func (s *Service) feed(ctx context.Context, ident models.Identity, sortBy string, limit int) ([]*models.Link, error) {
	if limit <= 0 {
		limit = 10
	}
	resp, err := s.SearchLinks(ctx, ident, models.LinkFilter{
		Status:    models.StatusActive,
		SortBy:    sortBy,
		SortOrder: "desc",
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	return resp.Links, nil
}

// CreateLink validates the request, infers the department from the
// caller's identity, and creates the link with its tag associations.
// Unknown tag ids are dropped by the association step, not rejected.
// Returns the fully-joined link.
func (s *Service) CreateLink(_ context.Context, ident models.Identity, req models.CreateLinkRequest) (*models.Link, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}
	if err := requireDepartment(ident.ProfileID, ident.DepartmentID); err != nil {
		return nil, err
	}

	status := models.StatusPending
	if ident.CanPublish() {
		status = models.StatusActive
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityDepartment
	}

	now := time.Now().UTC()
	link := &models.Link{
		ID:           uuid.NewString(),
		Title:        req.Title,
		URL:          req.URL,
		Description:  req.Description,
		Notes:        req.Notes,
		ShortCode:    req.ShortCode,
		Metadata:     req.Metadata,
		Source:       req.Source,
		Language:     req.Language,
		CategoryID:   req.CategoryID,
		DepartmentID: ident.DepartmentID,
		OwnerID:      ident.ProfileID,
		CreatedByID:  ident.ProfileID,
		Visibility:   visibility,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.CreateLink(link, req.TagIDs); err != nil {
		return nil, err
	}
	return s.db.GetLink(ident, link.ID)
}

// UpdateLink applies a partial patch: only supplied fields change, and a
// supplied tag set (even empty) fully replaces the associations.
// Counters and access time are never touched here. Returns the
// post-update, fully-joined link.
func (s *Service) UpdateLink(_ context.Context, ident models.Identity, id string, patch models.UpdateLinkRequest) (*models.Link, error) {
	if err := patch.Validate(); err != nil {
		return nil, validationErr(err)
	}

	link, err := s.db.GetLink(ident, id)
	if err != nil {
		return nil, err
	}
	applyLinkPatch(link, patch)
	link.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdateLink(link, patch.TagIDs); err != nil {
		return nil, err
	}
	return s.db.GetLink(ident, id)
}

func applyLinkPatch(link *models.Link, p models.UpdateLinkRequest) {
	if p.Title != nil {
		link.Title = *p.Title
	}
	if p.URL != nil {
		link.URL = *p.URL
	}
	if p.Description != nil {
		link.Description = *p.Description
	}
	if p.Notes != nil {
		link.Notes = *p.Notes
	}
	if p.ShortCode != nil {
		link.ShortCode = *p.ShortCode
	}
	if p.QRCodeURL != nil {
		link.QRCodeURL = *p.QRCodeURL
	}
	if p.CategoryID != nil {
		link.CategoryID = *p.CategoryID
	}
	if p.Visibility != nil {
		link.Visibility = *p.Visibility
	}
	if p.Status != nil {
		link.Status = *p.Status
	}
	if p.Metadata != nil {
		link.Metadata = *p.Metadata
	}
	if p.Source != nil {
		link.Source = *p.Source
	}
	if p.Language != nil {
		link.Language = *p.Language
	}
}

// DeleteLink removes a link the caller can see, cascading its tag
// associations. Deleting an unknown id returns ErrNotFound.
func (s *Service) DeleteLink(_ context.Context, ident models.Identity, id string) error {
	if _, err := s.db.GetLink(ident, id); err != nil {
		return err
	}
	return s.db.DeleteLink(id)
}

// RecordAccess increments the click counter and stamps the access time.
// The increment is atomic at the store, so N concurrent calls add
// exactly N. Unknown ids return ErrNotFound (uniform policy with
// DeleteLink and RecordView).
func (s *Service) RecordAccess(_ context.Context, id string) error {
	return s.db.RecordClick(id, time.Now().UTC())
}

// RecordView increments the view counter; same policy as RecordAccess.
func (s *Service) RecordView(_ context.Context, id string) error {
	return s.db.RecordView(id)
}
