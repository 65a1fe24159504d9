package api

import (
	"net/http"

	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/store"
)

// RequestsHandler handles stock requests.
type RequestsHandler struct {
	Store      *store.Store
	Controller *inventory.Controller
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /api/requests. Staff see their own requests; admins see
// all, optionally narrowed to one user.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	q := r.URL.Query()

	f := model.RequestFilter{
		Status: q.Get("status"),
		ItemID: q.Get("item_id"),
		UserID: q.Get("user_id"),
	}
	if user.Role != model.RoleAdmin {
		f.UserID = user.ID
	}

	requests, err := h.Store.ListRequests(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "list requests")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(requests))
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.RequestInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Controller.CreateRequest(r.Context(), CurrentUser(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "create request")
		return
	}
	jsonResponse(w, http.StatusCreated, req)
}

// Approve handles POST /api/requests/{id}/approve.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var body notesRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	req, err := h.Controller.ApproveRequest(r.Context(), actorID(r.Context()), r.PathValue("id"), body.Notes)
	if err != nil {
		writeError(w, r, err, "approve request")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Reject handles POST /api/requests/{id}/reject. Notes are required.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body notesRequest
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Controller.RejectRequest(r.Context(), actorID(r.Context()), r.PathValue("id"), body.Notes)
	if err != nil {
		writeError(w, r, err, "reject request")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Fulfill handles POST /api/requests/{id}/fulfill.
func (h *RequestsHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	req, err := h.Controller.FulfillRequest(r.Context(), actorID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "fulfill request")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}
