package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskbox/taskbox/internal/auth"
	"github.com/taskbox/taskbox/internal/handler/dto"
	"github.com/taskbox/taskbox/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
// Every route behind it is owner-scoped: the owner comes from the
// authenticated identity, never from the request.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ownerID := auth.MustIdentityFromContext(r.Context()).User.ID

	todo, err := h.svc.Create(r.Context(), ownerID, req.Text)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_created", "todo_id", todo.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.MustIdentityFromContext(r.Context()).User.ID

	todos, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(todos))
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ownerID := auth.MustIdentityFromContext(r.Context()).User.ID

	todo, err := h.svc.GetByIDForOwner(r.Context(), id, ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}

// Update handles PATCH /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ownerID := auth.MustIdentityFromContext(r.Context()).User.ID

	var req dto.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	patch := service.UpdatePatch{
		Text:      req.Text,
		Completed: req.Completed,
	}

	todo, err := h.svc.UpdateByIDForOwner(r.Context(), id, ownerID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_updated", "todo_id", todo.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}

// Delete handles DELETE /todos/{id}.
// The deleted record is echoed back in the response.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ownerID := auth.MustIdentityFromContext(r.Context()).User.ID

	todo, err := h.svc.DeleteByIDForOwner(r.Context(), id, ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_deleted", "todo_id", todo.ID, "user_id", ownerID)

	writeJSON(w, http.StatusOK, dto.TodoEnvelope{Todo: dto.ToTodoResponse(todo)})
}

// handleServiceError maps todo service errors to HTTP responses.
// Missing, foreign-owned, and malformed IDs produce the same 404.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "EMPTY_TEXT", "Todo text must not be empty")
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
	default:
		// Store-level failures are terminal for the request; no retries.
		h.logger.Error("request_failed", "error", err)
		writeError(w, http.StatusBadRequest, "REQUEST_FAILED", "Unable to complete request")
	}
}
