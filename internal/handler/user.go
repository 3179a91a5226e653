package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskbox/taskbox/internal/auth"
	"github.com/taskbox/taskbox/internal/handler/dto"
	"github.com/taskbox/taskbox/internal/middleware"
	"github.com/taskbox/taskbox/internal/service"
)

// UserHandler handles HTTP requests for account and session operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users.
// On success it issues a session token, exposes it in the x-auth response
// header, and returns the public view of the new user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.svc.IssueToken(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login handles POST /users/login.
// A failed login returns 400 with an opaque error; the response never says
// whether the email or the password was wrong.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := h.svc.IssueToken(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Me handles GET /users/me.
// The auth middleware has already resolved the identity.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(identity.User))
}

// Logout handles DELETE /users/me/token.
// It revokes exactly the presented token; other sessions stay alive.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	if err := h.svc.RevokeToken(r.Context(), identity.User, identity.Token); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("token_revoked", "user_id", identity.User.ID)

	w.WriteHeader(http.StatusOK)
}

// handleServiceError maps user service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 6 characters")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password")
	default:
		// Store-level failures are terminal for the request; no retries.
		h.logger.Error("request_failed", "error", err)
		writeError(w, http.StatusBadRequest, "REQUEST_FAILED", "Unable to complete request")
	}
}
