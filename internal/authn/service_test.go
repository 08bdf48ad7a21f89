package authn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/linkhub/internal/apperr"
	"github.com/starford/linkhub/internal/testutil"
)

func testAuthService(t *testing.T) *Service {
	t.Helper()
	db := testutil.TestStore(t)
	sessions := NewSessions("0123456789abcdef0123456789abcdef", time.Hour)
	return NewService(db, sessions, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	token, profile, err := svc.Register(ctx, "ada@example.com", "correct horse", "Ada Lovelace")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Fatal("Register returned empty token")
	}
	if profile.Email != "ada@example.com" || !profile.IsActive {
		t.Errorf("profile = %+v", profile)
	}
	token, got, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || got.ID != profile.ID {
		t.Errorf("login mismatch: token=%q id=%q", token, got.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "longenough", "X"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty email: err = %v", err)
	}
	if _, _, err := svc.Register(ctx, "x@example.com", "short", "X"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("short password: err = %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "dup@example.com", "password123", "First"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Register(ctx, "dup@example.com", "password456", "Second"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "bob@example.com", "password123", "Bob"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("unknown email: err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Login(ctx, "bob@example.com", "wrong password"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("wrong password: err = %v, want ErrUnauthorized", err)
	}
}

func TestResolve(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	token, profile, err := svc.Register(ctx, "eve@example.com", "password123", "Eve")
	if err != nil {
		t.Fatal(err)
	}

	ident, got, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.ProfileID != profile.ID || got.ID != profile.ID {
		t.Errorf("resolved identity %+v for profile %q", ident, profile.ID)
	}

	// A token whose profile no longer exists is a stale session.
	stale, err := svc.sessions.Issue("deleted-profile")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Resolve(ctx, stale); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("stale session: err = %v, want ErrUnauthorized", err)
	}
}
