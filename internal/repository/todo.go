package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taskbox/taskbox/internal/model"
)

// ErrTodoNotFound covers both a missing todo and a todo owned by someone
// else; the two cases are indistinguishable on purpose.
var ErrTodoNotFound = errors.New("todo not found")

// CreateTodo inserts a new todo into the database.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (id, text, completed, completed_at, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.CreatorID,
		todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// ListTodosByOwner retrieves all todos created by the given owner,
// in store-native order.
func (r *Repository) ListTodosByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	query := `
		SELECT id, text, completed, completed_at, creator_id, created_at
		FROM todos
		WHERE creator_id = $1
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	var todos []*model.Todo
	for rows.Next() {
		todo, err := scanTodoFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// GetTodoForOwner retrieves a todo by ID, scoped to its owner.
// A todo belonging to another user resolves to ErrTodoNotFound.
func (r *Repository) GetTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	query := `
		SELECT id, text, completed, completed_at, creator_id, created_at
		FROM todos
		WHERE id = $1 AND creator_id = $2
	`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// UpdateTodo persists a todo's mutable fields, scoped to its owner.
func (r *Repository) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		UPDATE todos
		SET text = $3, completed = $4, completed_at = $5
		WHERE id = $1 AND creator_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.CreatorID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// DeleteTodoForOwner removes a todo scoped to its owner and returns the
// deleted record.
func (r *Repository) DeleteTodoForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND creator_id = $2
		RETURNING id, text, completed, completed_at, creator_id, created_at
	`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	return todo, nil
}

// scanTodo scans a single row into a Todo model.
func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatorID,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// scanTodoFromRows scans a row from pgx.Rows into a Todo model.
func scanTodoFromRows(rows pgx.Rows) (*model.Todo, error) {
	var todo model.Todo
	err := rows.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatorID,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}
