package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("encoding response")
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeError maps a store or controller error to a response. action names
// the failed operation in logs and prefixes the message of unexpected
// errors, which carry the underlying error text.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrConflict):
		jsonError(w, http.StatusConflict, "record already exists")
	case errors.Is(err, model.ErrTransport):
		log.Error().Err(err).Str("path", r.URL.Path).Msg(action)
		jsonError(w, http.StatusServiceUnavailable, "data store unavailable, try again later")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(action)
		jsonError(w, http.StatusInternalServerError, "failed to "+action+": "+err.Error())
	}
}

// emptyIfNil keeps list responses as JSON arrays.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
