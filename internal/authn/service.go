package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/store"
)

// Service handles credential login, registration, and SSO profile
// resolution against the profile store.
type Service struct {
	db       store.Directory
	sessions *Sessions
	lark     *LarkClient // nil when SSO is not configured
}

// NewService creates an authentication service. lark may be nil.
func NewService(db store.Directory, sessions *Sessions, lark *LarkClient) *Service {
	return &Service{db: db, sessions: sessions, lark: lark}
}

// Sessions exposes the token signer for middleware wiring.
func (s *Service) Sessions() *Sessions { return s.sessions }

// Lark returns the SSO client, or nil when not configured.
func (s *Service) Lark() *LarkClient { return s.lark }

// Register creates a password-backed profile and issues a session.
// Duplicate emails fail with ErrConflict.
func (s *Service) Register(_ context.Context, email, password, fullName string) (string, *models.Profile, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}
	if len(password) < 8 {
		return "", nil, fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("authn: hash password: %w", err)
	}

	now := time.Now().UTC()
	profile := &models.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.CreateProfile(profile, string(hash)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return "", nil, fmt.Errorf("email %q already registered: %w", email, apperr.ErrConflict)
		}
		return "", nil, err
	}
	return s.issue(profile)
}

// Login verifies email/password credentials and issues a session.
// Unknown emails, wrong passwords, SSO-only accounts, and deactivated
// profiles all fail with ErrUnauthorized.
func (s *Service) Login(_ context.Context, email, password string) (string, *models.Profile, error) {
	profile, err := s.db.GetProfileByEmail(email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, fmt.Errorf("authn: login: %w", apperr.ErrUnauthorized)
		}
		return "", nil, err
	}
	hash, err := s.db.PasswordHash(profile.ID)
	if err != nil {
		return "", nil, err
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("authn: login: %w", apperr.ErrUnauthorized)
	}
	if !profile.IsActive {
		return "", nil, fmt.Errorf("authn: profile deactivated: %w", apperr.ErrUnauthorized)
	}
	return s.issue(profile)
}

// LoginWithLark completes the OAuth authorization-code exchange, resolves
// (or creates) the profile for the Lark user, and issues a session.
func (s *Service) LoginWithLark(ctx context.Context, code string) (string, *models.Profile, error) {
	if s.lark == nil {
		return "", nil, fmt.Errorf("authn: lark sso not configured: %w", apperr.ErrUnauthorized)
	}
	user, err := s.lark.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, err
	}

	profile, err := s.db.GetProfileByLarkUserID(user.OpenID)
	if errors.Is(err, apperr.ErrNotFound) {
		profile, err = s.createLarkProfile(user)
	}
	if err != nil {
		return "", nil, err
	}
	if !profile.IsActive {
		return "", nil, fmt.Errorf("authn: profile deactivated: %w", apperr.ErrUnauthorized)
	}
	return s.issue(profile)
}

func (s *Service) createLarkProfile(user *LarkUser) (*models.Profile, error) {
	departmentID := ""
	if user.DepartmentID != "" {
		if dept, err := s.db.GetDepartmentByLarkID(user.DepartmentID); err == nil {
			departmentID = dept.ID
		}
	}

	now := time.Now().UTC()
	profile := &models.Profile{
		ID:           uuid.NewString(),
		LarkUserID:   user.OpenID,
		Email:        user.Email,
		FullName:     user.Name,
		AvatarURL:    user.AvatarURL,
		Mobile:       user.Mobile,
		EmployeeNo:   user.EmployeeNo,
		Role:         models.RoleUser,
		IsActive:     true,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.CreateProfile(profile, ""); err != nil {
		// Concurrent first login with the same Lark account.
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return s.db.GetProfileByLarkUserID(user.OpenID)
		}
		return nil, err
	}
	return profile, nil
}

// Resolve turns a bearer token into the caller's Identity, loading the
// profile to pick up role and department.
func (s *Service) Resolve(_ context.Context, token string) (models.Identity, *models.Profile, error) {
	profileID, err := s.sessions.Verify(token)
	if err != nil {
		return models.Identity{}, nil, err
	}
	profile, err := s.db.GetProfile(profileID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Identity{}, nil, fmt.Errorf("authn: stale session: %w", apperr.ErrUnauthorized)
		}
		return models.Identity{}, nil, err
	}
	if !profile.IsActive {
		return models.Identity{}, nil, fmt.Errorf("authn: profile deactivated: %w", apperr.ErrUnauthorized)
	}
	return models.Identity{
		ProfileID:    profile.ID,
		DepartmentID: profile.DepartmentID,
		Role:         profile.Role,
	}, profile, nil
}

func (s *Service) issue(profile *models.Profile) (string, *models.Profile, error) {
	token, err := s.sessions.Issue(profile.ID)
	if err != nil {
		return "", nil, err
	}
	if err := s.db.TouchLastLogin(profile.ID, time.Now().UTC()); err != nil {
		return "", nil, err
	}
	return token, profile, nil
}
