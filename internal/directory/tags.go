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

// tagSearchPageSize caps tag name search results.
const tagSearchPageSize = 10

// defaultPopularTags is the page size for popular-tag listings when the
// caller does not supply one.
const defaultPopularTags = 20

// ListTags returns all tags, most used first.
func (s *Service) ListTags(_ context.Context) ([]models.Tag, error) {
	return s.db.ListTags()
}

// GetTag returns one tag by id.
func (s *Service) GetTag(_ context.Context, id string) (*models.Tag, error) {
	return s.db.GetTag(id)
}

// GetTagBySlug returns one tag by its globally unique slug.
func (s *Service) GetTagBySlug(_ context.Context, slugStr string) (*models.Tag, error) {
	return s.db.GetTagBySlug(slugStr)
}

// SearchTags performs a case-insensitive substring match on tag names,
// ordered by usage and capped at a fixed page size.
func (s *Service) SearchTags(_ context.Context, query string) ([]models.Tag, error) {
	return s.db.SearchTags(query, tagSearchPageSize)
}

// PopularTags returns the most-used tags.
func (s *Service) PopularTags(_ context.Context, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = defaultPopularTags
	}
	return s.db.PopularTags(limit)
}

// TagsForLink returns the tags associated with one link.
func (s *Service) TagsForLink(_ context.Context, linkID string) ([]models.Tag, error) {
	return s.db.TagsForLink(linkID)
}

// CreateTag creates a tag explicitly; a slug collision fails with
// ErrConflict. Use GetOrCreateTag for idempotent resolution by name.
func (s *Service) CreateTag(_ context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}
	tag, err := s.insertTag(req.Name, req.Color, req.Description)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, fmt.Errorf("tag slug %q taken: %w", slug.Make(req.Name), apperr.ErrConflict)
		}
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTag resolves a tag by name, creating it on miss. The slug's
// unique index arbitrates concurrent identical requests: when the insert
// loses the race it re-fetches and returns the winner, so two calls with
// the same name always yield the same tag id.
func (s *Service) GetOrCreateTag(_ context.Context, name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", apperr.ErrValidation)
	}
	slugStr := slug.Make(name)
	if slugStr == "" {
		return nil, fmt.Errorf("%w: tag name has no sluggable characters", apperr.ErrValidation)
	}

	existing, err := s.db.GetTagBySlug(slugStr)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	tag, err := s.insertTag(name, color, "")
	if errors.Is(err, apperr.ErrAlreadyExists) {
		// Lost the insert race; the winner's row is what the caller wants.
		return s.db.GetTagBySlug(slugStr)
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag; its link associations cascade.
func (s *Service) DeleteTag(_ context.Context, id string) error {
	return s.db.DeleteTag(id)
}

func (s *Service) insertTag(name, color, description string) (*models.Tag, error) {
	tag := &models.Tag{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Color:       color,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.CreateTag(tag); err != nil {
		return nil, err
	}
	return tag, nil
}
