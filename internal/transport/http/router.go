package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookpulse/internal/handler"
	"bookpulse/internal/httputil"
	authmw "bookpulse/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes.
type RouterConfig struct {
	UserHandler     *handler.UserHandler
	BookHandler     *handler.BookHandler
	LibraryHandler  *handler.LibraryHandler
	ActivityHandler *handler.ActivityHandler
	FollowHandler   *handler.FollowHandler
	FeedHandler     *handler.FeedHandler
	NoteHandler     *handler.NoteHandler
	JWTSecret       string
}

// NewRouter creates and configures a chi router with all route groups.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Everything else requires an authenticated caller; token issuance is
	// handled upstream.
	r.Group(func(r chi.Router) {
		r.Use(authmw.Auth(cfg.JWTSecret))

		// Catalog
		r.Post("/books", cfg.BookHandler.Create)
		r.Get("/books/{id}", cfg.BookHandler.GetByID)

		// Library
		r.Route("/library", func(r chi.Router) {
			r.Get("/", cfg.LibraryHandler.List)
			r.Post("/", cfg.LibraryHandler.Add)
			r.Patch("/{id}", cfg.LibraryHandler.Patch)
			r.Put("/{id}/progress", cfg.LibraryHandler.UpdateProgress)
			r.Post("/{id}/finish", cfg.LibraryHandler.MarkFinished)
			r.Delete("/{id}", cfg.LibraryHandler.Delete)
		})

		// Daily reading activity
		r.Get("/activity/daily", cfg.ActivityHandler.Daily)

		// Users and social graph
		r.Get("/users/{id}", cfg.UserHandler.GetProfile)
		r.Get("/users/{id}/activity/daily", cfg.UserHandler.DailyActivity)
		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)
		r.Get("/me/following", cfg.FollowHandler.Following)

		// Feed
		r.Get("/feed", cfg.FeedHandler.Get)

		// Notes
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", cfg.NoteHandler.ListMine)
			r.Post("/", cfg.NoteHandler.Create)
			r.Get("/{id}", cfg.NoteHandler.GetByID)
			r.Delete("/{id}", cfg.NoteHandler.Delete)
			r.Post("/{id}/like", cfg.NoteHandler.Like)
			r.Delete("/{id}/like", cfg.NoteHandler.Unlike)
			r.Get("/{id}/comments", cfg.NoteHandler.Comments)
			r.Post("/{id}/comments", cfg.NoteHandler.Comment)
		})
	})

	return r
}
