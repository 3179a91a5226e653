// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskbox/taskbox/internal/auth"
	"github.com/taskbox/taskbox/internal/metrics"
	"github.com/taskbox/taskbox/internal/model"
	"github.com/taskbox/taskbox/internal/repository"
)

// User service errors.
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrEmailTaken       = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token fails signature verification
	// or has no matching registry entry.
	ErrInvalidToken = errors.New("invalid token")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService handles account and session business logic.
type UserService struct {
	repo    *repository.Repository
	codec   *auth.TokenCodec
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, codec *auth.TokenCodec, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		codec:   codec,
		metrics: recorder,
	}
}

// Register creates a user with a freshly computed password hash.
// Hashing happens here and only here; nothing else ever rewrites the hash,
// so it cannot be double-hashed by unrelated updates.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, ErrPasswordTooShort
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        normalized,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate resolves a user by email and password.
// Unknown email and wrong password both map to ErrInvalidCredentials so the
// caller learns nothing about which check failed. The hash comparison is
// constant-time inside the hashing primitive.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSuccess()

	return user, nil
}

// IssueToken signs a new session token for the user and appends it to the
// token registry. Concurrent issues for the same user may race on the
// append; last write wins and both sessions are valid.
func (s *UserService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	token, err := s.codec.Sign(user.ID, model.AccessAuth)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	entry := model.AuthToken{
		ID:        ulid.Make().String(),
		Access:    model.AccessAuth,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AppendToken(ctx, user.ID, entry); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return token, nil
}

// VerifyToken resolves a session token to its user. Two independent checks
// must both pass: the signature verifies against the secret, and the exact
// token string is still present in a user's registry with access "auth".
// Signature validity alone is not sufficient after revocation.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		s.metrics.IncTokenVerified("rejected")
		return nil, ErrInvalidToken
	}

	if claims.Access != model.AccessAuth {
		s.metrics.IncTokenVerified("rejected")
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByToken(ctx, token, model.AccessAuth)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncTokenVerified("rejected")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if user.ID != claims.UserID {
		s.metrics.IncTokenVerified("rejected")
		return nil, ErrInvalidToken
	}

	s.metrics.IncTokenVerified("success")

	return user, nil
}

// RevokeToken removes the exact token entry from the user's registry,
// ending only that session. Revoking an absent token is not an error.
func (s *UserService) RevokeToken(ctx context.Context, user *model.User, token string) error {
	if err := s.repo.RemoveToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.metrics.IncTokenRevoked()

	return nil
}

// normalizeEmail trims, lowercases, and validates an email address.
func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || !emailRegex.MatchString(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
