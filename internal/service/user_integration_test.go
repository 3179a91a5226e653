//go:build integration

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/taskbox/taskbox/internal/auth"
	"github.com/taskbox/taskbox/internal/repository"
	"github.com/taskbox/taskbox/internal/testutil"
)

// ============================================================================
// User Service Integration Tests
// ============================================================================

func TestIntegrationUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	email := testutil.UniqueEmail("register")

	user, err := svc.Register(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password stored in plaintext")
	}

	authed, err := svc.Authenticate(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Errorf("authenticated ID = %q, want %q", authed.ID, user.ID)
	}
}

func TestIntegrationUserService_Register_NormalizesEmail(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	email := testutil.UniqueEmail("case")
	upper := "  " + email + "  "

	user, err := svc.Register(ctx, upper, "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != email {
		t.Errorf("stored email = %q, want %q", user.Email, email)
	}

	// Same address differing only in case is a duplicate.
	if _, err := svc.Register(ctx, email, "password123"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got: %v", err)
	}
}

func TestIntegrationUserService_Authenticate_OpaqueFailures(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	email := testutil.UniqueEmail("opaque")
	if _, err := svc.Register(ctx, email, "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown email fail with the same sentinel.
	_, wrongPass := svc.Authenticate(ctx, email, "wrong-password")
	_, unknown := svc.Authenticate(ctx, testutil.UniqueEmail("ghost"), "password123")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", wrongPass)
	}
	if !errors.Is(unknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got: %v", unknown)
	}
}

func TestIntegrationUserService_TokenLifecycle(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	user, err := svc.Register(ctx, testutil.UniqueEmail("lifecycle"), "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	resolved, err := svc.VerifyToken(ctx, token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("resolved ID = %q, want %q", resolved.ID, user.ID)
	}

	if err := svc.RevokeToken(ctx, user, token); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	// The signature still verifies, but the registry row is gone.
	if _, err := svc.VerifyToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after revocation, got: %v", err)
	}
}

func TestIntegrationUserService_RevokeOnlyPresentedToken(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	user, err := svc.Register(ctx, testutil.UniqueEmail("sessions"), "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := svc.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken (first) failed: %v", err)
	}
	second, err := svc.IssueToken(ctx, user)
	if err != nil {
		t.Fatalf("IssueToken (second) failed: %v", err)
	}

	if err := svc.RevokeToken(ctx, user, first); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	if _, err := svc.VerifyToken(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("first token should be revoked, got: %v", err)
	}
	if _, err := svc.VerifyToken(ctx, second); err != nil {
		t.Errorf("second token should still verify, got: %v", err)
	}
}

func TestIntegrationUserService_VerifyToken_ForeignSignature(t *testing.T) {
	ctx, svc, _ := newUserServiceEnv(t)

	user, err := svc.Register(ctx, testutil.UniqueEmail("foreign"), "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// A token signed with a different secret never verifies, even if it
	// were somehow present in the registry.
	foreignCodec := auth.NewTokenCodec("some-other-secret")
	forged, err := foreignCodec.Sign(user.ID, "auth")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := svc.VerifyToken(ctx, forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got: %v", err)
	}
}

func newUserServiceEnv(t *testing.T) (context.Context, *UserService, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetAllSchemas(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schemas: %v", err)
	}

	codec := auth.NewTokenCodec("integration-test-secret")
	svc := NewUserService(repo, codec, nil)

	return ctx, svc, repo
}
