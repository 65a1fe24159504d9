package api

import (
	"net/http"

	"github.com/erazemk/kns/internal/blob"
)

// BlobsHandler serves uploads kept in the database.
type BlobsHandler struct {
	Blobs *blob.DBStorage
}

// Get handles GET /api/blobs/{bucket}/{path...}. Objects are public so they
// can be used directly as image sources.
func (h *BlobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bucket := r.PathValue("bucket")
	if bucket != blob.BucketItems && bucket != blob.BucketAvatars {
		jsonError(w, http.StatusNotFound, "not found")
		return
	}

	objectPath := r.PathValue("path")
	if _, err := blob.CleanPath(objectPath); err != nil {
		jsonError(w, http.StatusNotFound, "not found")
		return
	}

	data, contentType, err := h.Blobs.Get(r.Context(), bucket, objectPath)
	if err != nil {
		writeError(w, r, err, "read object")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
