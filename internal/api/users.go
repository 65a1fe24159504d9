package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/auth"
	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	Store      *store.Store
	Controller *inventory.Controller
}

type updateUserRequest struct {
	Role       *string `json:"role"`
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "list users")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(users))
}

// Create handles POST /api/users. Accounts created by an admin are approved.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.UserInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Controller.CreateUser(r.Context(), actorID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "create user")
		return
	}
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "get user")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}. Only the fields present are changed.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "update user")
		return
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := h.Controller.SetRole(r.Context(), actorID(r.Context()), id, *req.Role); err != nil {
			writeError(w, r, err, "update user")
			return
		}
	}

	if req.FullName != nil || req.Department != nil {
		name, department := user.FullName, user.Department
		if req.FullName != nil {
			name = strings.TrimSpace(*req.FullName)
		}
		if req.Department != nil {
			department = strings.TrimSpace(*req.Department)
		}
		if name == "" {
			jsonError(w, http.StatusBadRequest, "full name required")
			return
		}
		if err := h.Store.UpdateUserProfile(r.Context(), id, name, department); err != nil {
			writeError(w, r, err, "update user")
			return
		}
	}

	updated, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "update user")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err, "reset password")
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), id, hash); err != nil {
		writeError(w, r, err, "reset password")
		return
	}

	log.Info().Str("actor", actorID(r.Context())).Str("user", id).Msg("password reset")
	jsonResponse(w, http.StatusOK, map[string]string{"status": "password reset"})
}

// Approve handles POST /api/users/{id}/approve.
func (h *UsersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.Controller.ApproveUser, "approve user")
}

// Reject handles POST /api/users/{id}/reject.
func (h *UsersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.Controller.RejectUser, "reject user")
}

func (h *UsersHandler) setStatus(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actorID, id string) error, action string) {
	id := r.PathValue("id")
	if err := apply(r.Context(), actorID(r.Context()), id); err != nil {
		writeError(w, r, err, action)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, action)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.DeleteUser(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err, "delete user")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
