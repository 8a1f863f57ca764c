// Package main is the entry point for the FlatPress server. It loads
// configuration, opens the flat record store, seeds the fixed pages, sets
// up routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flatpress/internal/cache"
	"flatpress/internal/config"
	"flatpress/internal/handlers"
	"flatpress/internal/recordstore"
	"flatpress/internal/render"
	"flatpress/internal/router"
	"flatpress/internal/session"
	"flatpress/internal/storage"
	"flatpress/internal/store"
)

// defaultSeeds are the fixed pages created on first start. Seeding is
// idempotent: existing pages keep their edits across restarts.
var defaultSeeds = []store.SeedPage{
	{Slug: "telegram", ID: "a1b2c3d4e5", Title: "Join on Telegram", LinkURL: "https://t.me/flatpress"},
	{Slug: "analytics", ID: "b2c3d4e5f6", Title: "Analytics"},
	{Slug: "course", ID: "c3d4e5f607", Title: "Course"},
}

func main() {
	// Structured logger — text output, debug level in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir,
	)

	// Open the flat record store.
	db, err := recordstore.Open(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open record store", "error", err)
		os.Exit(1)
	}

	// Seed the fixed pages (no-op for pages that already exist).
	if err := store.Seed(db, defaultSeeds); err != nil {
		slog.Error("failed to seed pages", "error", err)
		os.Exit(1)
	}

	// Session backend: Valkey when configured, in-process otherwise.
	var backend session.Backend
	if addr := cfg.ValkeyAddr(); addr != "" {
		client, err := cache.ConnectValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		backend = session.NewValkeyBackend(client)
	} else {
		slog.Warn("valkey not configured — sessions held in process memory")
		backend = session.NewMemoryBackend()
	}

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(backend, secureCookies)

	// Uploads live on the local filesystem, one folder per entity.
	files, err := storage.NewManager(cfg.UploadsDir)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	// Initialize the HTML template renderer.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores over the shared record store.
	pages := store.NewPages(db)
	cards := store.NewCards(db)

	// Create handler groups with their dependencies.
	publicHandlers := handlers.NewPublic(pages, cards, files, renderer)
	authHandlers := handlers.NewAuth(cfg, sessionStore, renderer)
	adminHandlers := handlers.NewAdmin(pages, cards, files, renderer)

	// Set up the Chi router with all middleware and routes.
	r := router.New(cfg, sessionStore, publicHandlers, authHandlers, adminHandlers)

	// Create the HTTP server. WriteTimeout must accommodate large media
	// uploads and downloads on slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
