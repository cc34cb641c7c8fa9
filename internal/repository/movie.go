package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/movieapi/internal/model"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
)

type MovieRepository interface {
	Movies(ctx context.Context) ([]*model.Movie, error)
	ByID(ctx context.Context, id int64) (*model.Movie, error)
	Create(ctx context.Context, movie *model.Movie) error
	Update(ctx context.Context, id int64, changes model.MovieChanges) error
	Delete(ctx context.Context, id int64) error
}

type movieRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewMovieRepository returns a repository whose statements are each bounded by timeout.
// Queries are written with ? placeholders and rebound for the pool's driver.
func NewMovieRepository(db *sqlx.DB, timeout time.Duration) MovieRepository {
	return &movieRepository{db: db, timeout: timeout}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *movieRepository) Movies(ctx context.Context) ([]*model.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	movies := []*model.Movie{}
	query := `SELECT id, name, release_date, image FROM movies ORDER BY id`

	err := r.db.SelectContext(ctx, &movies, query)
	if err != nil {
		return nil, err
	}

	return movies, nil
}

func (r *movieRepository) ByID(ctx context.Context, id int64) (*model.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	movie := &model.Movie{}
	query := r.db.Rebind(`SELECT id, name, release_date, image FROM movies WHERE id = ?`)

	err := r.db.GetContext(ctx, movie, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}

	return movie, nil
}

// Create inserts the movie and sets movie.ID to the generated key.
func (r *movieRepository) Create(ctx context.Context, movie *model.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO movies (name, release_date, image) VALUES (?, ?, ?)`

	// pgx does not implement LastInsertId
	if r.db.DriverName() == "pgx" {
		return r.db.QueryRowxContext(ctx, r.db.Rebind(query+` RETURNING id`),
			movie.Name,
			movie.ReleaseDate,
			movie.Image,
		).Scan(&movie.ID)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		movie.Name,
		movie.ReleaseDate,
		movie.Image,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	movie.ID = id

	return nil
}

// Update applies changes in a single statement. A missing row is not an error.
func (r *movieRepository) Update(ctx context.Context, id int64, changes model.MovieChanges) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.Rebind(`UPDATE movies
	          SET name = COALESCE(?, name), release_date = COALESCE(?, release_date), image = COALESCE(?, image)
	          WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query,
		changes.Name,
		changes.ReleaseDate,
		changes.Image,
		id,
	)

	return err
}

// Delete removes the row if present. A missing row is not an error.
func (r *movieRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.Rebind(`DELETE FROM movies WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
