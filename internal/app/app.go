package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/movieapi/internal/config"
	"github.com/templui/movieapi/internal/db"
	"github.com/templui/movieapi/internal/repository"
	"github.com/templui/movieapi/internal/service"
	"github.com/templui/movieapi/internal/storage"
	"github.com/templui/movieapi/internal/validation"
)

// migrationRetryInterval is how often a degraded start re-checks the datastore
const migrationRetryInterval = 5 * time.Second

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Storage      storage.Storage
	MovieService *service.MovieService

	stopMigrations context.CancelFunc
	migrationsDone chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	dsn, err := db.DSN(db.Params{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		Connection: cfg.DBConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build database DSN: %w", err)
	}

	database, err := db.Init(cfg.DBDriver, dsn)

	a := &App{Cfg: cfg, DB: database}

	// An unreachable datastore is not fatal: requests fail one by one until it comes back,
	// and migrations run in the background once it does
	var unavailable *db.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		slog.Error("database unavailable, serving degraded", "driver", cfg.DBDriver, "error", err)
		a.migrateWhenReady()
	case err != nil:
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	default:
		// Run database migrations
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Repositories
	movieRepository := repository.NewMovieRepository(database, cfg.DBQueryTimeout)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	movieService := service.NewMovieService(
		movieRepository,
		fileStorage,
		validation.PosterConstraints(cfg.UploadMaxSize, cfg.UploadExts),
	)

	a.Storage = fileStorage
	a.MovieService = movieService

	return a, nil
}

func (a *App) migrateWhenReady() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopMigrations = cancel
	a.migrationsDone = make(chan struct{})

	go func() {
		defer close(a.migrationsDone)

		err := db.MigrateWhenReady(ctx, a.DB.DB, a.Cfg.DBDriver, migrationRetryInterval)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			slog.Error("deferred migrations failed", "driver", a.Cfg.DBDriver, "error", err)
		default:
			slog.Info("database reachable, deferred migrations applied", "driver", a.Cfg.DBDriver)
		}
	}()
}

func (a *App) Close() error {
	if a.stopMigrations != nil {
		a.stopMigrations()
		<-a.migrationsDone
	}
	return db.Close(a.DB)
}
