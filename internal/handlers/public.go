// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flatpress/internal/models"
	"flatpress/internal/render"
	"flatpress/internal/sanitize"
	"flatpress/internal/storage"
	"flatpress/internal/store"
)

// Public groups the handlers for the visitor-facing site: the landing
// page, page and card detail views, and the upload file server.
type Public struct {
	pages  *store.Pages
	cards  *store.Cards
	files  *storage.Manager
	render *render.Renderer
}

// NewPublic creates a new Public handler group.
func NewPublic(pages *store.Pages, cards *store.Cards, files *storage.Manager, rn *render.Renderer) *Public {
	return &Public{pages: pages, cards: cards, files: files, render: rn}
}

// Index renders the landing page: the pinned page buttons followed by all
// cards grouped by section, newest first within each group.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	pages, err := p.pages.List()
	if err != nil {
		slog.Error("list pages failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	cards, err := p.cards.List()
	if err != nil {
		slog.Error("list cards failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	bySection := make(map[models.Section][]models.Card, len(models.Sections))
	for _, c := range cards {
		bySection[c.Section] = append(bySection[c.Section], c)
	}

	p.render.Page(w, r, "index", &render.PageData{
		Title: "FlatPress",
		Data: map[string]any{
			"pages":          pages,
			"sections":       models.Sections,
			"cardsBySection": bySection,
		},
	})
}

// PageView renders a single page by slug. Link pages redirect straight to
// their external URL instead of rendering a body.
func (p *Public) PageView(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := p.pages.Get(slug)
	if err != nil {
		slog.Error("get page failed", "slug", slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}
	if page.LinkURL != "" {
		http.Redirect(w, r, page.LinkURL, http.StatusFound)
		return
	}

	p.render.Page(w, r, "page", &render.PageData{
		Title: page.Title,
		Data:  map[string]any{"page": page},
	})
}

// CardView renders a single card by id. The id is sanitized first, so a
// mixed-case id resolves to the stored lowercase card and anything
// non-hex is a 404.
func (p *Public) CardView(w http.ResponseWriter, r *http.Request) {
	id, ok := sanitize.ID(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	card, err := p.cards.Get(id)
	if err != nil {
		slog.Error("get card failed", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if card == nil {
		http.NotFound(w, r)
		return
	}

	p.render.Page(w, r, "card", &render.PageData{
		Title: card.Title,
		Data:  map[string]any{"card": card},
	})
}

// ServeUpload serves an original uploaded file. The path components are
// re-sanitized before touching the filesystem; anything that does not
// survive sanitization unchanged is a 404.
func (p *Public) ServeUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	path, ok := p.files.FilePath(id, name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// ServeThumb serves the thumbnail for an uploaded image, falling back to
// the original file when no thumbnail was generated.
func (p *Public) ServeThumb(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	if path, ok := p.files.ThumbPath(id, name); ok {
		http.ServeFile(w, r, path)
		return
	}

	path, ok := p.files.FilePath(id, name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
