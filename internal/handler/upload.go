package handler

import (
	"errors"
	"net/http"

	"github.com/templui/movieapi/internal/storage"
)

// UploadHandler serves stored posters under /uploads/
type UploadHandler struct {
	storage storage.Storage
	files   http.Handler
}

func NewUploadHandler(store storage.Storage) *UploadHandler {
	h := &UploadHandler{storage: store}

	// Local storage is served straight from disk, other backends redirect
	local, ok := store.(*storage.LocalStorage)
	if ok {
		h.files = http.StripPrefix("/uploads/", http.FileServer(local.FileSystem()))
	}

	return h
}

func (h *UploadHandler) ServePoster(w http.ResponseWriter, r *http.Request) {
	if h.files != nil {
		h.files.ServeHTTP(w, r)
		return
	}

	url, err := h.storage.URL(r.Context(), r.PathValue("filename"))
	if errors.Is(err, storage.ErrInvalidPath) || errors.Is(err, storage.ErrNotFound) {
		NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, err, "failed to locate file")
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
