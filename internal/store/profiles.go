package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/models"
)

const profileColumns = `id, lark_user_id, email, full_name, avatar_url, mobile,
	employee_no, job_title, role, is_active, department_id, last_login_at,
	created_at, updated_at`

// CreateProfile inserts a profile. passwordHash may be empty for
// SSO-only accounts.
func (s *Store) CreateProfile(p *models.Profile, passwordHash string) error {
	_, err := s.conn.Exec(`
		INSERT INTO profiles (id, lark_user_id, email, full_name, avatar_url, mobile,
			employee_no, job_title, role, is_active, password_hash, department_id,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, nullable(p.LarkUserID), p.Email, p.FullName, p.AvatarURL, p.Mobile,
		p.EmployeeNo, p.JobTitle, string(p.Role), p.IsActive, passwordHash,
		nullable(p.DepartmentID), p.CreatedAt, p.UpdatedAt)
	return mapInsertErr("insert profile", err)
}

// GetProfile returns one profile by id.
func (s *Store) GetProfile(id string) (*models.Profile, error) {
	row := s.conn.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfileRow(row, "get profile")
}

// GetProfileByEmail returns one profile by email.
func (s *Store) GetProfileByEmail(email string) (*models.Profile, error) {
	row := s.conn.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email)
	return scanProfileRow(row, "get profile by email")
}

// GetProfileByLarkUserID returns one profile by its Lark user id.
func (s *Store) GetProfileByLarkUserID(larkUserID string) (*models.Profile, error) {
	row := s.conn.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE lark_user_id = ?`, larkUserID)
	return scanProfileRow(row, "get profile by lark user id")
}

// PasswordHash returns the stored hash for a profile, empty for SSO-only
// accounts.
func (s *Store) PasswordHash(profileID string) (string, error) {
	var hash string
	err := s.conn.QueryRow(`SELECT password_hash FROM profiles WHERE id = ?`, profileID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("store: password hash: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("store: password hash: %w", err)
	}
	return hash, nil
}

// TouchLastLogin stamps the profile's last successful session issuance.
func (s *Store) TouchLastLogin(profileID string, at time.Time) error {
	_, err := s.conn.Exec(`UPDATE profiles SET last_login_at = ? WHERE id = ?`, at, profileID)
	if err != nil {
		return fmt.Errorf("store: touch last login: %w", err)
	}
	return nil
}

// profilesByID fetches a batch of profiles into a map.
func (s *Store) profilesByID(ids []string) (map[string]*models.Profile, error) {
	out := make(map[string]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?, ", len(ids))
	rows, err := s.conn.Query(
		`SELECT `+profileColumns+` FROM profiles WHERE id IN (`+placeholders[:len(placeholders)-2]+`)`,
		toAnySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("store: profiles by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func scanProfile(row scanner) (*models.Profile, error) {
	var p models.Profile
	var larkUserID, departmentID sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&p.ID, &larkUserID, &p.Email, &p.FullName, &p.AvatarURL, &p.Mobile,
		&p.EmployeeNo, &p.JobTitle, &p.Role, &p.IsActive, &departmentID, &lastLogin,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.LarkUserID = larkUserID.String
	p.DepartmentID = departmentID.String
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLoginAt = &t
	}
	return &p, nil
}

func scanProfileRow(row *sql.Row, op string) (*models.Profile, error) {
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return p, nil
}
