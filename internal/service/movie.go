package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/templui/movieapi/internal/model"
	"github.com/templui/movieapi/internal/repository"
	"github.com/templui/movieapi/internal/storage"
	"github.com/templui/movieapi/internal/validation"
)

var (
	ErrMissingUpload = errors.New("image file is required")
)

// posterExt is the only extension shape kept in stored names
var posterExt = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// Upload is a poster file received with a create or update request
type Upload struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// CreateMovieInput carries the create form. Image is nil when no file was sent.
type CreateMovieInput struct {
	Name        string
	ReleaseDate string
	Image       *Upload
}

// UpdateMovieInput carries the update form. Nil fields keep the stored value.
type UpdateMovieInput struct {
	Name        *string
	ReleaseDate *string
	Image       *Upload
}

type MovieService struct {
	repo        repository.MovieRepository
	storage     storage.Storage
	constraints validation.FileConstraints
	now         func() time.Time
}

func NewMovieService(repo repository.MovieRepository, storage storage.Storage, constraints validation.FileConstraints) *MovieService {
	return &MovieService{
		repo:        repo,
		storage:     storage,
		constraints: constraints,
		now:         time.Now,
	}
}

func (s *MovieService) Movies(ctx context.Context) ([]*model.Movie, error) {
	movies, err := s.repo.Movies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// ByID returns repository.ErrMovieNotFound when no row matches
func (s *MovieService) ByID(ctx context.Context, id int64) (*model.Movie, error) {
	movie, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// Create stores the poster, then inserts the row.
// The poster is not removed if the insert fails.
func (s *MovieService) Create(ctx context.Context, in CreateMovieInput) (*model.Movie, error) {
	err := errors.Join(
		validation.Required("name", in.Name),
		validation.Required("release_date", in.ReleaseDate),
	)
	if err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, ErrMissingUpload
	}

	filename, err := s.savePoster(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	movie := &model.Movie{
		Name:        in.Name,
		ReleaseDate: model.Date(in.ReleaseDate),
		Image:       filename,
	}

	err = s.repo.Create(ctx, movie)
	if err != nil {
		slog.Warn("movie insert failed, poster left in storage", "image", filename)
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	return movie, nil
}

// Update stores a new poster when one was sent, then updates the row.
// Old posters are never removed, and a missing row is not reported.
func (s *MovieService) Update(ctx context.Context, id int64, in UpdateMovieInput) error {
	changes := model.MovieChanges{Name: in.Name}
	if in.ReleaseDate != nil {
		date := model.Date(*in.ReleaseDate)
		changes.ReleaseDate = &date
	}

	if in.Image != nil {
		filename, err := s.savePoster(ctx, in.Image)
		if err != nil {
			return err
		}
		changes.Image = &filename
	}

	err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	return nil
}

// Delete removes the row if present. The poster stays in storage.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

func (s *MovieService) savePoster(ctx context.Context, upload *Upload) (string, error) {
	err := validation.ValidateFile(upload.Header, s.constraints)
	if err != nil {
		return "", err
	}

	filename, err := s.posterName(upload.Header.Filename)
	if err != nil {
		return "", err
	}

	err = s.storage.Save(ctx, filename, upload.File)
	if err != nil {
		return "", fmt.Errorf("failed to save poster: %w", err)
	}

	return filename, nil
}

// posterName derives <unix millis><6 random digits><original extension>.
// An extension that is not plain letters and digits is dropped.
func (s *MovieService) posterName(original string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate poster name: %w", err)
	}

	ext := filepath.Ext(original)
	if !posterExt.MatchString(ext) {
		ext = ""
	}

	return strconv.FormatInt(s.now().UnixMilli(), 10) + fmt.Sprintf("%06d", n.Int64()) + ext, nil
}
