// Package router sets up all HTTP routes and middleware chains. It
// organizes routes into public and admin groups with appropriate
// middleware stacks; the admin login lives on a configurable secret path.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flatpress/internal/config"
	"flatpress/internal/handlers"
	"flatpress/internal/middleware"
	"flatpress/internal/session"
	"flatpress/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg *config.Config, sessionStore *session.Store, public *handlers.Public, auth *handlers.Auth, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.MaxBytes(cfg.MaxUploadBytes))
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, err := fs.Sub(web.Static, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	// Secret admin login path. Not linked from anywhere on the site.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Get(cfg.AdminLoginPath, auth.LoginPage)
		r.Post(cfg.AdminLoginPath, auth.LoginSubmit)
	})

	// Admin routes — require the admin session and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAdmin(cfg.AdminLoginPath))

		r.Post("/logout", auth.Logout)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", admin.PagesList)
			r.Get("/{slug}", admin.PageEdit)
			r.Post("/{slug}", admin.PageUpdate)
			r.Post("/{slug}/files/delete", admin.PageFileDelete)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", admin.CardsList)
			r.Get("/new", admin.CardNew)
			r.Post("/new", admin.CardCreate)
			r.Get("/{id}", admin.CardEdit)
			r.Post("/{id}", admin.CardUpdate)
			r.Post("/{id}/delete", admin.CardDelete)
			r.Post("/{id}/files/delete", admin.CardFileDelete)
		})
	})

	// Public routes.
	r.Get("/", public.Index)
	r.Get("/p/{slug}", public.PageView)
	r.Get("/c/{id}", public.CardView)
	r.Get("/uploads/{id}/thumb/{name}", public.ServeThumb)
	r.Get("/uploads/{id}/{name}", public.ServeUpload)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
