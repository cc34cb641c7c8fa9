package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/templui/movieapi/internal/repository"
	"github.com/templui/movieapi/internal/service"
	"github.com/templui/movieapi/internal/validation"
)

// multipartMemory is how much of a form is held in memory before spilling to temp files
const multipartMemory = 10 << 20

type MovieHandler struct {
	movieService *service.MovieService
	maxBodySize  int64
}

func NewMovieHandler(movieService *service.MovieService, maxBodySize int64) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		maxBodySize:  maxBodySize,
	}
}

func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movieService.Movies(r.Context())
	if err != nil {
		serverError(w, r, err, "failed to load movies")
		return
	}

	writeJSON(w, r, http.StatusOK, movies)
}

func (h *MovieHandler) ShowMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "movie not found")
		return
	}

	movie, err := h.movieService.ByID(r.Context(), id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		writeError(w, r, http.StatusNotFound, "movie not found")
		return
	}
	if err != nil {
		serverError(w, r, err, "failed to load movie", "movie_id", id)
		return
	}

	writeJSON(w, r, http.StatusOK, movie)
}

func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	movie, err := h.movieService.Create(r.Context(), service.CreateMovieInput{
		Name:        deref(form.name),
		ReleaseDate: deref(form.releaseDate),
		Image:       form.image,
	})
	if err != nil {
		h.writeMutationError(w, r, err, "failed to create movie")
		return
	}

	slog.Info("movie created", "movie_id", movie.ID, "image", movie.Image)
	writeJSON(w, r, http.StatusCreated, movie)
}

func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "movie not found")
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	err := h.movieService.Update(r.Context(), id, service.UpdateMovieInput{
		Name:        form.name,
		ReleaseDate: form.releaseDate,
		Image:       form.image,
	})
	if err != nil {
		h.writeMutationError(w, r, err, "failed to update movie", "movie_id", id)
		return
	}

	writeJSON(w, r, http.StatusOK, envelope{"message": "movie updated successfully"})
}

func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "movie not found")
		return
	}

	err := h.movieService.Delete(r.Context(), id)
	if err != nil {
		serverError(w, r, err, "failed to delete movie", "movie_id", id)
		return
	}

	writeJSON(w, r, http.StatusOK, envelope{"message": "movie deleted successfully"})
}

// writeMutationError maps create/update failures: client mistakes are 4xx, the rest 500
func (h *MovieHandler) writeMutationError(w http.ResponseWriter, r *http.Request, err error, message string, args ...any) {
	switch {
	case errors.Is(err, service.ErrMissingUpload),
		errors.Is(err, validation.ErrRequired),
		errors.Is(err, validation.ErrFileExtension):
		writeError(w, r, http.StatusBadRequest, strings.ReplaceAll(err.Error(), "\n", "; "))
	case errors.Is(err, validation.ErrFileTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	default:
		serverError(w, r, err, message, args...)
	}
}

func movieID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// movieForm is the parsed create/update body. Nil fields were not sent.
type movieForm struct {
	name        *string
	releaseDate *string
	image       *service.Upload
	cleanup     func()
}

func (f *movieForm) close() {
	if f.image != nil {
		_ = f.image.File.Close()
	}
	if f.cleanup != nil {
		f.cleanup()
	}
}

// parseForm reads a multipart, urlencoded or JSON body. It writes the error response itself.
func (h *MovieHandler) parseForm(w http.ResponseWriter, r *http.Request) (*movieForm, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return h.parseJSON(w, r)
	}

	form := &movieForm{}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		h.formError(w, r, err)
		return nil, false
	}
	if r.MultipartForm != nil {
		form.cleanup = func() { _ = r.MultipartForm.RemoveAll() }
	}

	form.name = formValue(r, "name")
	form.releaseDate = formValue(r, "release_date")

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			form.close()
			h.formError(w, r, err)
			return nil, false
		default:
			form.image = &service.Upload{File: file, Header: header}
		}
	}

	return form, true
}

func (h *MovieHandler) parseJSON(w http.ResponseWriter, r *http.Request) (*movieForm, bool) {
	var body struct {
		Name        *string `json:"name"`
		ReleaseDate *string `json:"release_date"`
	}

	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		h.formError(w, r, err)
		return nil, false
	}

	return &movieForm{
		name:        blankToNil(body.Name),
		releaseDate: blankToNil(body.ReleaseDate),
	}, true
}

func (h *MovieHandler) formError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	slog.Debug("invalid request body", "error", err, "path", r.URL.Path)
	writeError(w, r, http.StatusBadRequest, "invalid request body")
}

// formValue returns nil when the field is missing or blank
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return blankToNil(&values[0])
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
