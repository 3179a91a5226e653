package dto

import "github.com/taskbox/taskbox/internal/model"

// CreateTodoRequest represents the request body for creating a todo.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest represents the request body for patching a todo.
// Fields other than text and completed are ignored.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// TodoResponse represents a todo in API responses.
// completedAt is epoch milliseconds, or null while the todo is open.
type TodoResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"creatorId"`
}

// TodoEnvelope wraps a single todo for fetch, patch, and delete responses.
type TodoEnvelope struct {
	Todo *TodoResponse `json:"todo"`
}

// TodoListResponse wraps the owner's todo collection.
type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// ToTodoResponse converts a Todo model to TodoResponse DTO.
func ToTodoResponse(todo *model.Todo) *TodoResponse {
	return &TodoResponse{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		CreatorID:   todo.CreatorID,
	}
}

// ToTodoListResponse converts a slice of Todo models to TodoListResponse.
// An owner with no todos gets an empty array, never null.
func ToTodoListResponse(todos []*model.Todo) *TodoListResponse {
	responses := make([]TodoResponse, len(todos))
	for i, todo := range todos {
		responses[i] = *ToTodoResponse(todo)
	}
	return &TodoListResponse{Todos: responses}
}
