package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/imaging"
	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/store"
	"github.com/erazemk/kns/internal/viewmodel"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Store      *store.Store
	Controller *inventory.Controller
}

type bulkDeleteResponse struct {
	*inventory.BulkDeleteResult
	State viewmodel.State `json:"state"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Store.ListItems(r.Context(), model.ItemFilter{
		Category:   q.Get("category"),
		Condition:  q.Get("condition"),
		Search:     q.Get("search"),
		AssignedTo: q.Get("assigned_to"),
	})
	if err != nil {
		writeError(w, r, err, "list items")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Controller.CreateItem(r.Context(), actorID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "create item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// BulkCreate handles POST /api/items/bulk. Individual failures are counted
// in the result rather than failing the request.
func (h *ItemsHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var in inventory.BulkInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Controller.BulkCreateItems(r.Context(), actorID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "create items")
		return
	}

	status := http.StatusCreated
	if res.SuccessCount == 0 {
		status = http.StatusOK
	}
	jsonResponse(w, status, res)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in inventory.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Controller.EditItem(r.Context(), actorID(r.Context()), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err, "update item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.DeleteItem(r.Context(), actorID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err, "delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BulkDelete handles POST /api/items/delete. The body is the client's view
// state; its selection is deleted and the cleared state is returned.
func (h *ItemsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var state viewmodel.State
	if err := decodeJSON(r, &state); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(state.Selection) == 0 {
		jsonError(w, http.StatusBadRequest, "no items selected")
		return
	}
	state.Normalize()

	res := h.Controller.BulkDelete(r.Context(), actorID(r.Context()), &state)
	jsonResponse(w, http.StatusOK, bulkDeleteResponse{BulkDeleteResult: res, State: state})
}

// UploadImage handles PUT /api/items/{id}/image with a multipart "image" file.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.Store.GetItem(r.Context(), id); err != nil {
		writeError(w, r, err, "upload image")
		return
	}

	url, ok := uploadImage(w, r, h.Store, "image", imaging.ItemImage, id)
	if !ok {
		return
	}

	item, err := h.Controller.SetItemImage(r.Context(), actorID(r.Context()), id, url)
	if err != nil {
		writeError(w, r, err, "upload image")
		return
	}

	log.Debug().Str("item", id).Str("url", url).Msg("item image stored")
	jsonResponse(w, http.StatusOK, item)
}
