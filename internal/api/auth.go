package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/auth"
	"github.com/erazemk/kns/internal/imaging"
	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/store"
)

// AuthHandler handles authentication and profile endpoints.
type AuthHandler struct {
	Store      *store.Store
	Controller *inventory.Controller
	JWTSecret  string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type profileRequest struct {
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

// Signup handles POST /api/auth/signup. New accounts wait for approval.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in inventory.UserInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Controller.Signup(r.Context(), in)
	if errors.Is(err, model.ErrConflict) {
		jsonError(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		writeError(w, r, err, "create account")
		return
	}

	jsonResponse(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, model.ErrNotFound) {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r, err, "sign in")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		log.Warn().Str("email", email).Str("remote", r.RemoteAddr).Msg("login failed")
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if auth.Check(user, "") == auth.Rejected {
		jsonError(w, http.StatusForbidden, auth.Rejected.Message())
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("generating token")
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	log.Info().Str("user", user.Email).Str("role", user.Role).Str("status", user.Status).Msg("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Store.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err, "sign out")
		return
	}

	log.Info().Str("user", claims.Email).Msg("user logged out")
	jsonResponse(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, r, err, "change password")
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, r, err, "change password")
		return
	}

	log.Info().Str("user", user.Email).Msg("password changed")
	jsonResponse(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "full name required")
		return
	}

	if err := h.Store.UpdateUserProfile(r.Context(), user.ID, name, strings.TrimSpace(req.Department)); err != nil {
		writeError(w, r, err, "update profile")
		return
	}

	updated, err := h.Store.GetUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "update profile")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// UploadAvatar handles PUT /api/auth/avatar with a multipart "avatar" file.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	url, ok := uploadImage(w, r, h.Store, "avatar", imaging.Avatar, user.ID)
	if !ok {
		return
	}

	if err := h.Store.UpdateUserAvatar(r.Context(), user.ID, url); err != nil {
		writeError(w, r, err, "update avatar")
		return
	}

	log.Info().Str("user", user.Email).Msg("avatar updated")
	jsonResponse(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// uploadImage reads the multipart field, normalizes the image and stores it.
// It writes the error response itself and reports whether to continue.
func uploadImage(w http.ResponseWriter, r *http.Request, st *store.Store, field string, kind imaging.Kind, ownerID string) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1024)

	file, _, err := r.FormFile(field)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "missing "+field+" file")
		return "", false
	}
	defer file.Close()

	result, err := imaging.Process(file, kind)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	path := kind.ObjectPath(ownerID)
	if err := st.Upload(r.Context(), kind.Bucket(), path, bytes.NewReader(result.Data), result.MIME); err != nil {
		writeError(w, r, err, "store image")
		return "", false
	}
	return st.PublicURL(kind.Bucket(), path), true
}
