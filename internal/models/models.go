// Package models defines the domain types for LinkHub.
package models

import "time"

// LinkStatus is the lifecycle state of a link, distinct from visibility.
// Only Active links appear in recent/popular feeds.
type LinkStatus string

// Link lifecycle states.
const (
	StatusActive   LinkStatus = "Active"
	StatusPending  LinkStatus = "Pending"
	StatusDead     LinkStatus = "Dead"
	StatusArchived LinkStatus = "Archived"
)

// Valid reports whether s is a known status.
func (s LinkStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusDead, StatusArchived:
		return true
	}
	return false
}

// Visibility is the intended access scope of a link or category.
type Visibility string

// Access scopes.
const (
	VisibilityPublic     Visibility = "Public"
	VisibilityDepartment Visibility = "Department"
	VisibilityTeam       Visibility = "Team"
	VisibilityPrivate    Visibility = "Private"
)

// Valid reports whether v is a known visibility scope.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityDepartment, VisibilityTeam, VisibilityPrivate:
		return true
	}
	return false
}

// Role is a profile's permission level.
type Role string

// Profile roles.
const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
	RoleViewer  Role = "Viewer"
)

// Department is an organizational unit sourced from the external HR
// directory. Rows are upserted by the sync job, never created by end users.
type Department struct {
	ID               string    `json:"id"`
	LarkDepartmentID string    `json:"lark_department_id"`
	Name             string    `json:"name"`
	NameEn           string    `json:"name_en,omitempty"`
	Description      string    `json:"description,omitempty"`
	ParentID         string    `json:"parent_id,omitempty"`
	MemberCount      int       `json:"member_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Children is populated only by tree queries.
	Children []*Department `json:"children,omitempty"`
}

// Profile is a user account, belonging to at most one department.
type Profile struct {
	ID           string     `json:"id"`
	LarkUserID   string     `json:"lark_user_id,omitempty"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Mobile       string     `json:"mobile,omitempty"`
	EmployeeNo   string     `json:"employee_no,omitempty"`
	JobTitle     string     `json:"job_title,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	DepartmentID string     `json:"department_id,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Category is an organizational grouping for links. Categories form a
// tree via ParentID; slug is unique within a department scope. LinkCount
// is maintained by the store.
type Category struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	Icon         string     `json:"icon,omitempty"`
	Color        string     `json:"color,omitempty"`
	ParentID     string     `json:"parent_id,omitempty"`
	DepartmentID string     `json:"department_id,omitempty"`
	Visibility   Visibility `json:"visibility"`
	SortOrder    int        `json:"sort_order"`
	LinkCount    int        `json:"link_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Children is populated only by tree queries.
	Children []*Category `json:"children,omitempty"`
}

// Tag is a lightweight, globally scoped label. UsageCount is maintained
// by the store as the number of link associations.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Link is a shared reference to an external resource. ClickCount,
// ViewCount and LastAccessedAt are mutated only by the access-recording
// operations, never by general update.
type Link struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	ShortCode   string         `json:"short_code,omitempty"`
	QRCodeURL   string         `json:"qr_code_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Source      string         `json:"source,omitempty"`
	Language    string         `json:"language,omitempty"`

	CategoryID   string `json:"category_id,omitempty"`
	DepartmentID string `json:"department_id"`
	OwnerID      string `json:"owner_id"`
	CreatedByID  string `json:"created_by_id"`

	Visibility Visibility `json:"visibility"`
	Status     LinkStatus `json:"status"`

	ClickCount     int        `json:"click_count"`
	ViewCount      int        `json:"view_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined relations, populated by single-link reads and search.
	Category   *Category   `json:"category,omitempty"`
	Department *Department `json:"department,omitempty"`
	Owner      *Profile    `json:"owner,omitempty"`
	CreatedBy  *Profile    `json:"created_by,omitempty"`
	Tags       []Tag       `json:"tags"`
}

// Identity is the resolved caller passed explicitly into every directory
// operation. The store uses it to apply visibility scoping; there is no
// ambient current-user state anywhere in the service.
type Identity struct {
	ProfileID    string
	DepartmentID string
	Role         Role
}

// IsAdmin reports whether the caller bypasses visibility scoping.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// CanPublish reports whether links created by this caller default to
// Active rather than Pending.
func (id Identity) CanPublish() bool {
	return id.Role == RoleAdmin || id.Role == RoleManager
}
