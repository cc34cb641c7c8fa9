package routes

import (
	"net/http"

	"github.com/templui/movieapi/internal/app"
	"github.com/templui/movieapi/internal/config"
	"github.com/templui/movieapi/internal/handler"
	"github.com/templui/movieapi/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	movies := handler.NewMovieHandler(app.MovieService, app.Cfg.RequestMaxSize)
	uploads := handler.NewUploadHandler(app.Storage)

	mux := http.NewServeMux()

	// Movies
	mux.HandleFunc("GET /movies", movies.ListMovies)
	mux.HandleFunc("GET /movies/{id}", movies.ShowMovie)
	mux.HandleFunc("POST /movies", movies.CreateMovie)
	mux.HandleFunc("PUT /movies/{id}", movies.UpdateMovie)
	mux.HandleFunc("DELETE /movies/{id}", movies.DeleteMovie)

	// Posters
	mux.HandleFunc("GET /uploads/{filename}", uploads.ServePoster)

	// 404
	mux.HandleFunc("/{path...}", handler.NotFound)

	handler := middleware.Chain(mux, globalMiddleware(app.Cfg)...)

	return handler
}

// globalMiddleware is executed in order (top to bottom)
func globalMiddleware(cfg *config.Config) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,      // Request id first so every later log line carries it
		middleware.RequestLogging, // Outside Recover so a recovered panic is logged with its 500
		middleware.Recover,
		middleware.CORS(cfg.CORSAllowedOrigins),
	}
}
