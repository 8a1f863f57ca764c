// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"flatpress/internal/config"
	"flatpress/internal/models"
	"flatpress/internal/render"
	"flatpress/internal/session"
)

// Auth handles the secret-path admin login and logout. There is a single
// shared admin password; an unset password disables login entirely.
type Auth struct {
	cfg      *config.Config
	sessions *session.Store
	render   *render.Renderer
}

// NewAuth creates a new Auth handler group.
func NewAuth(cfg *config.Config, sessions *session.Store, rn *render.Renderer) *Auth {
	return &Auth{cfg: cfg, sessions: sessions, render: rn}
}

// LoginPage renders the password form. Admins that already hold a
// session are sent straight to the dashboard.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if data, _ := a.sessions.Get(r.Context(), r); data != nil && data.IsAdmin {
		http.Redirect(w, r, "/admin/pages", http.StatusFound)
		return
	}

	a.render.Page(w, r, "login", &render.PageData{
		Title: "Administration",
		Data:  map[string]any{"loginPath": a.cfg.AdminLoginPath},
	})
}

// LoginSubmit checks the submitted password against the configured admin
// password and creates an admin session on success.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if a.cfg.AdminPassword == "" {
		slog.Warn("login attempt with no admin password configured")
		session.SetFlashes(w, []session.Flash{session.Error("Admin login is not configured.")})
		http.Redirect(w, r, a.cfg.AdminLoginPath, http.StatusFound)
		return
	}

	password := r.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) != 1 {
		slog.Warn("failed admin login", "remote", r.RemoteAddr)
		session.SetFlashes(w, []session.Flash{session.Error("Wrong password.")})
		http.Redirect(w, r, a.cfg.AdminLoginPath, http.StatusFound)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{IsAdmin: true, CreatedAt: models.Now()}); err != nil {
		slog.Error("create session failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("admin logged in", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/admin/pages", http.StatusFound)
}

// Logout destroys the current session and returns to the public site.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("destroy session failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
