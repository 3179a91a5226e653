//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskbox/taskbox/internal/model"
	"github.com/taskbox/taskbox/internal/testutil"
)

// ============================================================================
// Todo Repository Integration Tests
// ============================================================================

func TestIntegrationTodoRepository_CreateTodo(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	todo := testutil.NewTestTodo(t, owner.ID, "water the plants")

	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	retrieved, err := repo.GetTodoForOwner(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodoForOwner failed: %v", err)
	}

	if retrieved.Text != todo.Text {
		t.Errorf("Text mismatch: got %q, want %q", retrieved.Text, todo.Text)
	}
	if retrieved.Completed {
		t.Error("new todo should not be completed")
	}
	if retrieved.CompletedAt != nil {
		t.Errorf("new todo CompletedAt = %v, want nil", *retrieved.CompletedAt)
	}
}

func TestIntegrationTodoRepository_ListTodosByOwner_Scoped(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for _, text := range []string{"one", "two", "three"} {
		if err := repo.CreateTodo(ctx, testutil.NewTestTodo(t, owner.ID, text)); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}
	if err := repo.CreateTodo(ctx, testutil.NewTestTodo(t, other.ID, "not yours")); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	todos, err := repo.ListTodosByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListTodosByOwner failed: %v", err)
	}

	if len(todos) != 3 {
		t.Fatalf("ListTodosByOwner returned %d todos, want 3", len(todos))
	}
	for _, todo := range todos {
		if todo.CreatorID != owner.ID {
			t.Errorf("todo %s has creator %q, want %q", todo.ID, todo.CreatorID, owner.ID)
		}
	}
}

func TestIntegrationTodoRepository_GetTodoForOwner_OtherOwner(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	todo := testutil.NewTestTodo(t, other.ID, "private")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	// A foreign-owned todo is indistinguishable from a missing one.
	_, err := repo.GetTodoForOwner(ctx, todo.ID, owner.ID)
	if !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected ErrTodoNotFound for other owner, got: %v", err)
	}
}

func TestIntegrationTodoRepository_UpdateTodo(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	todo := testutil.NewTestTodo(t, owner.ID, "draft")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	todo.Text = "final"
	todo.MarkCompleted(time.Now().UTC())

	if err := repo.UpdateTodo(ctx, todo); err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}

	retrieved, err := repo.GetTodoForOwner(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodoForOwner failed: %v", err)
	}

	if retrieved.Text != "final" {
		t.Errorf("Text = %q, want %q", retrieved.Text, "final")
	}
	if !retrieved.Completed {
		t.Error("todo should be completed")
	}
	if retrieved.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestIntegrationTodoRepository_UpdateTodo_NotFound(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	ghost := testutil.NewTestTodo(t, owner.ID, "never saved")

	err := repo.UpdateTodo(ctx, ghost)
	if !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected ErrTodoNotFound, got: %v", err)
	}
}

func TestIntegrationTodoRepository_DeleteTodoForOwner(t *testing.T) {
	ctx, repo, owner := newTodoTestEnv(t)

	todo := testutil.NewTestTodo(t, owner.ID, "ephemeral")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	deleted, err := repo.DeleteTodoForOwner(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteTodoForOwner failed: %v", err)
	}
	if deleted.ID != todo.ID {
		t.Errorf("deleted ID = %q, want %q", deleted.ID, todo.ID)
	}

	if _, err := repo.GetTodoForOwner(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected ErrTodoNotFound after delete, got: %v", err)
	}

	// Deleting again reports not found.
	if _, err := repo.DeleteTodoForOwner(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected ErrTodoNotFound on second delete, got: %v", err)
	}
}

func newTodoTestEnv(t *testing.T) (context.Context, *Repository, *model.User) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
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

	owner := testutil.NewTestUser(t, testutil.UniqueEmail("owner"))
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	return ctx, repo, owner
}
