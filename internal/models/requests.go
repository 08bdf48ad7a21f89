package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Sort fields accepted by link search.
const (
	SortByCreatedAt  = "created_at"
	SortByUpdatedAt  = "updated_at"
	SortByClickCount = "click_count"
	SortByTitle      = "title"
)

// LinkFilter is the search/filter contract for link listings. All fields
// are optional; zero values mean "no filter".
type LinkFilter struct {
	Query        string     `json:"query,omitempty"`
	CategoryID   string     `json:"category_id,omitempty"`
	DepartmentID string     `json:"department_id,omitempty"`
	Status       LinkStatus `json:"status,omitempty"`
	Visibility   Visibility `json:"visibility,omitempty"`

	// TagIDs filters to links carrying at least one of these tags
	// (OR semantics).
	TagIDs []string `json:"tag_ids,omitempty"`

	SortBy    string `json:"sort_by,omitempty"`    // created_at | updated_at | click_count | title
	SortOrder string `json:"sort_order,omitempty"` // asc | desc
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Normalize clamps pagination and falls back to the default sort
// (created_at desc) for unknown sort inputs.
func (f *LinkFilter) Normalize() {
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByClickCount, SortByTitle:
	default:
		f.SortBy = SortByCreatedAt
	}
	switch f.SortOrder {
	case "asc", "desc":
	default:
		f.SortOrder = "desc"
	}
}

// CreateLinkRequest is the caller input for link creation. The department
// is inferred from the caller's profile, never supplied here.
type CreateLinkRequest struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	ShortCode   string         `json:"short_code,omitempty"`
	CategoryID  string         `json:"category_id,omitempty"`
	TagIDs      []string       `json:"tag_ids,omitempty"`
	Visibility  Visibility     `json:"visibility,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Source      string         `json:"source,omitempty"`
	Language    string         `json:"language,omitempty"`
}

// Validate checks required fields before any store call.
func (r CreateLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
		validation.Field(&r.URL, validation.Required, is.URL),
	)
}

// UpdateLinkRequest is a partial patch: only non-nil fields change.
// TagIDs, when present (including an empty slice), fully replaces the
// tag-association set.
type UpdateLinkRequest struct {
	Title       *string         `json:"title,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	ShortCode   *string         `json:"short_code,omitempty"`
	QRCodeURL   *string         `json:"qr_code_url,omitempty"`
	CategoryID  *string         `json:"category_id,omitempty"`
	TagIDs      *[]string       `json:"tag_ids,omitempty"`
	Visibility  *Visibility     `json:"visibility,omitempty"`
	Status      *LinkStatus     `json:"status,omitempty"`
	Metadata    *map[string]any `json:"metadata,omitempty"`
	Source      *string         `json:"source,omitempty"`
	Language    *string         `json:"language,omitempty"`
}

// Validate rejects patches that would blank required fields or set
// unknown enum values.
func (r UpdateLinkRequest) Validate() error {
	if r.Title != nil {
		if err := validation.Validate(*r.Title, validation.Required, validation.Length(1, 512)); err != nil {
			return err
		}
	}
	if r.URL != nil {
		if err := validation.Validate(*r.URL, validation.Required, is.URL); err != nil {
			return err
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		return validation.NewError("validation_status", "unknown status")
	}
	if r.Visibility != nil && !r.Visibility.Valid() {
		return validation.NewError("validation_visibility", "unknown visibility")
	}
	return nil
}

// CreateCategoryRequest is the caller input for category creation. Slug
// is derived from Name server-side.
type CreateCategoryRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Color       string     `json:"color,omitempty"`
	ParentID    string     `json:"parent_id,omitempty"`
	Visibility  Visibility `json:"visibility,omitempty"`
	SortOrder   int        `json:"sort_order,omitempty"`
}

// Validate checks required fields.
func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
	)
}

// UpdateCategoryRequest is a partial patch for categories. Changing Name
// re-derives the slug.
type UpdateCategoryRequest struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Icon        *string     `json:"icon,omitempty"`
	Color       *string     `json:"color,omitempty"`
	ParentID    *string     `json:"parent_id,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
	SortOrder   *int        `json:"sort_order,omitempty"`
}

// Validate rejects patches that would blank the name.
func (r UpdateCategoryRequest) Validate() error {
	if r.Name != nil {
		if err := validation.Validate(*r.Name, validation.Required, validation.Length(1, 255)); err != nil {
			return err
		}
	}
	return nil
}

// CreateTagRequest is the caller input for explicit tag creation.
type CreateTagRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks required fields.
func (r CreateTagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 64)),
	)
}

// SearchLinksResponse is the paginated result envelope. Total counts all
// matching rows before pagination.
type SearchLinksResponse struct {
	Links  []*Link `json:"links"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
