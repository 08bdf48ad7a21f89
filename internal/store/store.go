package store

import (
	"time"

	"github.com/starford/linkhub/internal/models"
)

// Directory defines the persistence operations the link directory
// depends on. Consumers should depend on this interface rather than the
// concrete *Store type to facilitate testing with mocks.
type Directory interface {
	// Links.
	CreateLink(link *models.Link, tagIDs []string) error
	UpdateLink(link *models.Link, tagIDs *[]string) error
	DeleteLink(id string) error
	GetLink(ident models.Identity, id string) (*models.Link, error)
	GetLinkByShortCode(ident models.Identity, code string) (*models.Link, error)
	SearchLinks(ident models.Identity, f models.LinkFilter) ([]*models.Link, int, error)
	RecordClick(id string, at time.Time) error
	RecordView(id string) error

	// Categories.
	CreateCategory(c *models.Category) error
	UpdateCategory(c *models.Category) error
	DeleteCategory(id string) error
	GetCategory(id string) (*models.Category, error)
	GetCategoryBySlug(slug, departmentID string) (*models.Category, error)
	ListCategories(departmentID string) ([]*models.Category, error)
	SetCategorySortOrder(id string, sortOrder int) error

	// Tags.
	CreateTag(t *models.Tag) error
	DeleteTag(id string) error
	GetTag(id string) (*models.Tag, error)
	GetTagBySlug(slug string) (*models.Tag, error)
	ListTags() ([]models.Tag, error)
	SearchTags(query string, limit int) ([]models.Tag, error)
	PopularTags(limit int) ([]models.Tag, error)
	TagsForLink(linkID string) ([]models.Tag, error)

	// Departments.
	UpsertDepartment(d *models.Department) error
	SetDepartmentParent(larkID, parentLarkID string) error
	GetDepartment(id string) (*models.Department, error)
	GetDepartmentByLarkID(larkID string) (*models.Department, error)
	ListDepartments() ([]*models.Department, error)

	// Profiles.
	CreateProfile(p *models.Profile, passwordHash string) error
	GetProfile(id string) (*models.Profile, error)
	GetProfileByEmail(email string) (*models.Profile, error)
	GetProfileByLarkUserID(larkUserID string) (*models.Profile, error)
	PasswordHash(profileID string) (string, error)
	TouchLastLogin(profileID string, at time.Time) error

	Close() error
}

// Verify *Store satisfies Directory at compile time.
var _ Directory = (*Store)(nil)
