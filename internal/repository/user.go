package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taskbox/taskbox/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// CreateUser inserts a new user into the database.
// The unique index on email is the only defense against duplicate
// registration races; the second insert loses.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByToken retrieves the user whose token registry contains the exact
// token string with the given access level. This is the store-membership
// half of session verification; a revoked token has no row and resolves
// to ErrUserNotFound no matter how valid its signature is.
func (r *Repository) GetUserByToken(ctx context.Context, token, access string) (*model.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.created_at
		FROM users u
		JOIN user_tokens t ON t.user_id = u.id
		WHERE t.token = $1 AND t.access = $2
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, token, access))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}

	return user, nil
}

// AppendToken adds an entry to a user's token registry.
func (r *Repository) AppendToken(ctx context.Context, userID string, tok model.AuthToken) error {
	query := `
		INSERT INTO user_tokens (id, user_id, access, token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		tok.ID,
		userID,
		tok.Access,
		tok.Token,
		tok.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append token: %w", err)
	}

	return nil
}

// RemoveToken deletes the exact token entry from a user's registry.
// Removing an absent token is not an error.
func (r *Repository) RemoveToken(ctx context.Context, userID, token string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`

	if _, err := r.pool.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	return nil
}

// ListTokens returns all registry entries for a user.
func (r *Repository) ListTokens(ctx context.Context, userID string) ([]model.AuthToken, error) {
	query := `
		SELECT id, access, token, created_at
		FROM user_tokens
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.AuthToken
	for rows.Next() {
		var tok model.AuthToken
		if err := rows.Scan(&tok.ID, &tok.Access, &tok.Token, &tok.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, tok)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return tokens, nil
}

// DeleteUser removes a user record. Registry entries and todos cascade.
// Not reachable from the HTTP surface, but the store supports explicit
// account deletion.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
