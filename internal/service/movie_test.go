package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/movieapi/internal/db/dbtest"
	"github.com/templui/movieapi/internal/model"
	"github.com/templui/movieapi/internal/repository"
	"github.com/templui/movieapi/internal/storage"
	"github.com/templui/movieapi/internal/validation"
)

var posterPattern = regexp.MustCompile(`^\d+\.jpg$`)

func newUpload(t *testing.T, filename, content string) *Upload {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["image"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return &Upload{File: file, Header: header}
}

func newService(t *testing.T, repo repository.MovieRepository) (*MovieService, string) {
	t.Helper()

	if repo == nil {
		repo = repository.NewMovieRepository(dbtest.New(t), 5*time.Second)
	}
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	return NewMovieService(repo, store, validation.PosterConstraints(1<<20, nil)), dir
}

func strPtr(s string) *string { return &s }

func TestMovieService_CreateThenByID(t *testing.T) {
	svc, dir := newService(t, nil)
	ctx := context.Background()

	movie, err := svc.Create(ctx, CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "jpeg-bytes"),
	})
	require.NoError(t, err)
	assert.Positive(t, movie.ID)
	assert.Equal(t, "Dune", movie.Name)
	assert.Equal(t, model.Date("2021-10-22"), movie.ReleaseDate)
	assert.Regexp(t, posterPattern, movie.Image)

	data, err := os.ReadFile(filepath.Join(dir, movie.Image))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	got, err := svc.ByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, movie, got)
}

func TestMovieService_CreateValidation(t *testing.T) {
	svc, dir := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateMovieInput{Name: "Dune", ReleaseDate: "2021-10-22"})
	assert.ErrorIs(t, err, ErrMissingUpload)

	_, err = svc.Create(ctx, CreateMovieInput{ReleaseDate: "2021-10-22", Image: newUpload(t, "p.jpg", "x")})
	assert.ErrorIs(t, err, validation.ErrRequired)
	assert.ErrorContains(t, err, "name is required")

	_, err = svc.Create(ctx, CreateMovieInput{Image: newUpload(t, "p.jpg", "x")})
	assert.ErrorContains(t, err, "name is required")
	assert.ErrorContains(t, err, "release_date is required")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is stored when validation fails")
}

func TestMovieService_CreateRejectsLargePoster(t *testing.T) {
	repo := repository.NewMovieRepository(dbtest.New(t), time.Second)
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := NewMovieService(repo, store, validation.PosterConstraints(4, nil))

	_, err = svc.Create(context.Background(), CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "too many bytes"),
	})
	assert.ErrorIs(t, err, validation.ErrFileTooLarge)
}

func TestMovieService_PosterNamesDoNotCollide(t *testing.T) {
	svc, _ := newService(t, nil)
	fixed := time.UnixMilli(1634860800000)
	svc.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for range 20 {
		name, err := svc.posterName("poster.jpg")
		require.NoError(t, err)
		assert.Regexp(t, `^1634860800000\d{6}\.jpg$`, name)
		seen[name] = true
	}
	assert.Greater(t, len(seen), 1)

	name, err := svc.posterName("still.JPEG")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.JPEG$`, name)
}

func TestMovieService_UpdateWithoutImageKeepsPoster(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	movie, err := svc.Create(ctx, CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "v1"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, movie.ID, UpdateMovieInput{
		Name:        strPtr("Dune: Part One"),
		ReleaseDate: strPtr("2021-09-03"),
	}))

	got, err := svc.ByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune: Part One", got.Name)
	assert.Equal(t, model.Date("2021-09-03"), got.ReleaseDate)
	assert.Equal(t, movie.Image, got.Image)
}

func TestMovieService_UpdateWithImageKeepsOldFile(t *testing.T) {
	svc, dir := newService(t, nil)
	ctx := context.Background()

	movie, err := svc.Create(ctx, CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "v1"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, movie.ID, UpdateMovieInput{Image: newUpload(t, "new.png", "v2")}))

	got, err := svc.ByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)
	assert.NotEqual(t, movie.Image, got.Image)
	assert.Regexp(t, `^\d+\.png$`, got.Image)
	assert.FileExists(t, filepath.Join(dir, movie.Image))
	assert.FileExists(t, filepath.Join(dir, got.Image))
}

func TestMovieService_DeleteLeavesPoster(t *testing.T) {
	svc, dir := newService(t, nil)
	ctx := context.Background()

	movie, err := svc.Create(ctx, CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "v1"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, movie.ID))
	require.NoError(t, svc.Delete(ctx, movie.ID))

	_, err = svc.ByID(ctx, movie.ID)
	assert.ErrorIs(t, err, repository.ErrMovieNotFound)
	assert.FileExists(t, filepath.Join(dir, movie.Image))
}

type failingRepo struct {
	repository.MovieRepository
	err error
}

func (r failingRepo) Create(context.Context, *model.Movie) error { return r.err }

func (r failingRepo) Update(context.Context, int64, model.MovieChanges) error { return r.err }

func TestMovieService_InsertFailureLeavesOrphanPoster(t *testing.T) {
	boom := errors.New("connection lost")
	svc, dir := newService(t, failingRepo{err: boom})

	_, err := svc.Create(context.Background(), CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, "poster.jpg", "v1"),
	})
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = svc.Update(context.Background(), 1, UpdateMovieInput{Image: newUpload(t, "again.jpg", "v2")})
	assert.ErrorIs(t, err, boom)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMovieService_PosterNameDropsUnsafeExtension(t *testing.T) {
	svc, _ := newService(t, nil)

	for _, original := range []string{`poster.j\pg`, `C:\dir.v2\poster`, "poster.", "poster.tar gz", "poster"} {
		name, err := svc.posterName(original)
		require.NoError(t, err)
		assert.Regexp(t, `^\d+$`, name, original)
	}

	name, err := svc.posterName("poster.webp")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.webp$`, name)
}

func TestMovieService_CreateWithBackslashFilename(t *testing.T) {
	svc, dir := newService(t, nil)

	movie, err := svc.Create(context.Background(), CreateMovieInput{
		Name:        "Dune",
		ReleaseDate: "2021-10-22",
		Image:       newUpload(t, `poster.j\pg`, "v1"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^\d+$`, movie.Image)
	assert.FileExists(t, filepath.Join(dir, movie.Image))
}
