package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskbox/taskbox/internal/metrics"
	"github.com/taskbox/taskbox/internal/model"
	"github.com/taskbox/taskbox/internal/repository"
)

// Todo service errors.
var (
	ErrEmptyText = errors.New("todo text must not be empty")
	// ErrTodoNotFound covers malformed IDs, missing todos, and todos owned
	// by a different user. The three cases surface identically so the API
	// never reveals whether someone else's todo exists.
	ErrTodoNotFound = errors.New("todo not found")
)

// TodoService handles owner-scoped todo business logic.
// Every operation takes the owner ID from the authenticated caller; it is
// never read from a request body.
type TodoService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo *repository.Repository, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		repo:    repo,
		metrics: recorder,
	}
}

// Create adds a todo owned by ownerID. Text is trimmed and must be non-empty.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*model.Todo, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}

	todo := &model.Todo{
		ID:        ulid.Make().String(),
		Text:      trimmed,
		Completed: false,
		CreatorID: ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()

	return todo, nil
}

// ListByOwner returns all todos created by ownerID, in store-native order.
func (s *TodoService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Todo, error) {
	todos, err := s.repo.ListTodosByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetByIDForOwner retrieves a single todo scoped to its owner.
func (s *TodoService) GetByIDForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !isValidID(id) {
		return nil, ErrTodoNotFound
	}

	todo, err := s.repo.GetTodoForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// DeleteByIDForOwner removes a todo scoped to its owner and returns the
// deleted record.
func (s *TodoService) DeleteByIDForOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	if !isValidID(id) {
		return nil, ErrTodoNotFound
	}

	todo, err := s.repo.DeleteTodoForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	s.metrics.IncTodoDeleted()

	return todo, nil
}

// UpdatePatch carries the only two fields a caller may change.
// Anything else in the request body is discarded before it gets here.
type UpdatePatch struct {
	Text      *string
	Completed *bool
}

// UpdateByIDForOwner applies a patch to a todo scoped to its owner.
//
// Completion policy: a true Completed stamps CompletedAt with the current
// epoch-millis; an absent or false Completed forces completed=false and
// completedAt=null. The reset applies even when the patch only touches
// text, so a text-only edit clears a previous completion timestamp.
// Intentional; changing it is a product decision, not a bug fix.
func (s *TodoService) UpdateByIDForOwner(ctx context.Context, id, ownerID string, patch UpdatePatch) (*model.Todo, error) {
	if !isValidID(id) {
		return nil, ErrTodoNotFound
	}

	todo, err := s.repo.GetTodoForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	applyPatch(todo, patch, time.Now().UTC())

	if err := s.repo.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.metrics.IncTodoUpdated()

	return todo, nil
}

// applyPatch mutates the todo according to the patch policy.
func applyPatch(todo *model.Todo, patch UpdatePatch, now time.Time) {
	if patch.Text != nil {
		todo.Text = strings.TrimSpace(*patch.Text)
	}

	if patch.Completed != nil && *patch.Completed {
		todo.MarkCompleted(now)
	} else {
		todo.ClearCompleted()
	}
}

// isValidID reports whether the string is a well-formed todo identifier.
// Malformed IDs short-circuit to not-found without a store round trip.
func isValidID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
