package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/middleware"
	"github.com/Totarae/bookmarks/internal/web"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, pages *web.Web, sessions *auth.Sessions, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.GzipMiddleware)
	r.Use(sessions.Authenticate)

	r.Get("/ping", handler.Ping)

	r.Get("/auth/login", handler.SignIn)
	r.Get("/auth/callback", handler.AuthCallback)
	r.Post("/api/auth/signout", handler.SignOut)

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handler.ListBookmarks)
		r.Post("/", handler.CreateBookmark)
		r.Get("/deleted", handler.ListDeletedBookmarks)
		r.Get("/changes", handler.Changes)
		r.Patch("/{id}", handler.UpdateBookmark)
		r.Delete("/{id}", handler.DeleteBookmark)
		r.Post("/{id}/restore", handler.RestoreBookmark)
	})

	r.Get("/", pages.Landing)
	r.Get("/homepage", pages.Homepage)
	r.Post("/actions/bookmarks/add", pages.AddBookmark)
	r.Post("/actions/bookmarks/delete", pages.DeleteBookmark)
	r.Post("/actions/signout", pages.SignOut)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":"Not found"}` + "\n"))
	})
	return r
}
