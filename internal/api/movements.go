package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/report"
	"github.com/erazemk/kns/internal/store"
)

// MovementsHandler handles the movement log.
type MovementsHandler struct {
	Store      *store.Store
	Controller *inventory.Controller
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := report.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, err, "list movements")
		return
	}

	movements, err := h.Store.ListMovements(r.Context(), model.MovementFilter{
		ItemID: q.Get("item_id"),
		UserID: q.Get("user_id"),
		Kind:   q.Get("kind"),
		Since:  rng.From,
		Until:  rng.To,
	})
	if err != nil {
		writeError(w, r, err, "list movements")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(movements))
}

// Record handles POST /api/movements. A movement that was logged but whose
// item update failed is reported with 200 and a warning.
func (h *MovementsHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in inventory.MovementInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.Controller.RecordMovement(r.Context(), actorID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "record movement")
		return
	}

	status := http.StatusCreated
	if out.Warning != "" {
		status = http.StatusOK
	}
	jsonResponse(w, status, out)
}

// Clear handles DELETE /api/movements.
func (h *MovementsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.Store.ClearMovements(r.Context())
	if err != nil {
		writeError(w, r, err, "clear movements")
		return
	}

	log.Warn().Str("actor", actorID(r.Context())).Int64("deleted", n).Msg("movement log cleared")
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": n})
}
