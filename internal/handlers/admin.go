// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flatpress/internal/models"
	"flatpress/internal/render"
	"flatpress/internal/sanitize"
	"flatpress/internal/session"
	"flatpress/internal/storage"
	"flatpress/internal/store"
)

// multipartMemory is the in-memory portion of a parsed upload form;
// larger files spill to temp files. The request body itself is capped
// upstream by the MaxBytes middleware.
const multipartMemory = 32 << 20

// Admin groups the content-management handlers behind the admin session.
type Admin struct {
	pages  *store.Pages
	cards  *store.Cards
	files  *storage.Manager
	render *render.Renderer
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(pages *store.Pages, cards *store.Cards, files *storage.Manager, rn *render.Renderer) *Admin {
	return &Admin{pages: pages, cards: cards, files: files, render: rn}
}

// --- Pages ---

// PagesList shows all pages with edit links. Pages are fixed at seed
// time; the admin edits them but never creates or deletes one.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	pages, err := a.pages.List()
	if err != nil {
		slog.Error("list pages failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	a.render.Page(w, r, "admin_pages", &render.PageData{
		Title: "Pages",
		Data:  map[string]any{"pages": pages},
	})
}

// PageEdit renders the edit form for one page.
func (a *Admin) PageEdit(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := a.pages.Get(slug)
	if err != nil {
		slog.Error("get page failed", "slug", slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	a.render.Page(w, r, "admin_page_edit", &render.PageData{
		Title: "Edit: " + page.Title,
		Data:  map[string]any{"page": page},
	})
}

// PageUpdate applies the submitted form to the page: text fields are
// replaced, new uploads are appended to the existing files list.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := a.pages.Get(slug)
	if err != nil {
		slog.Error("get page failed", "slug", slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if msg := validateTitle(title); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/pages/"+page.Slug, http.StatusFound)
		return
	}
	linkURL := r.FormValue("link_url")
	if msg := validateLinkURL(linkURL); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/pages/"+page.Slug, http.StatusFound)
		return
	}
	description := r.FormValue("description")
	if msg := validateDescription(description); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/pages/"+page.Slug, http.StatusFound)
		return
	}

	page.Title = title
	page.LinkURL = linkURL
	page.Description = description

	flashes := a.saveUploads(r, page.ID, &page.Files)

	if err := a.pages.Upsert(page); err != nil {
		slog.Error("upsert page failed", "slug", page.Slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	flashes = append(flashes, session.Ok("Page saved."))
	session.SetFlashes(w, flashes)
	http.Redirect(w, r, "/admin/pages/"+page.Slug, http.StatusFound)
}

// PageFileDelete removes one attachment from a page, both the record
// entry and the file on disk.
func (a *Admin) PageFileDelete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	name := r.FormValue("name")

	page, err := a.pages.Get(slug)
	if err != nil {
		slog.Error("get page failed", "slug", slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	removed, err := a.pages.RemoveFile(slug, name)
	if err != nil {
		slog.Error("remove page file failed", "slug", slug, "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if removed {
		a.files.Remove(page.ID, name)
		session.SetFlashes(w, []session.Flash{session.Ok("File deleted.")})
	} else {
		session.SetFlashes(w, []session.Flash{session.Error("File not found.")})
	}
	http.Redirect(w, r, "/admin/pages/"+page.Slug, http.StatusFound)
}

// --- Cards ---

// CardsList shows all cards, newest first.
func (a *Admin) CardsList(w http.ResponseWriter, r *http.Request) {
	cards, err := a.cards.List()
	if err != nil {
		slog.Error("list cards failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	a.render.Page(w, r, "admin_cards", &render.PageData{
		Title: "Cards",
		Data:  map[string]any{"cards": cards},
	})
}

// CardNew renders an empty card form.
func (a *Admin) CardNew(w http.ResponseWriter, r *http.Request) {
	a.render.Page(w, r, "admin_card_edit", &render.PageData{
		Title: "New card",
		Data: map[string]any{
			"isNew":    true,
			"card":     &models.Card{Section: models.SectionGeneral},
			"sections": models.Sections,
			"action":   "/admin/cards/new",
		},
	})
}

// CardCreate creates a card from the form, storing any uploads under the
// freshly generated card id.
func (a *Admin) CardCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if msg := validateTitle(title); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/cards/new", http.StatusFound)
		return
	}

	description := r.FormValue("description")
	if msg := validateDescription(description); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/cards/new", http.StatusFound)
		return
	}

	card := &models.Card{
		ID:          store.NewCardID(),
		Title:       title,
		Section:     models.Section(r.FormValue("section")),
		Description: description,
	}

	flashes := a.saveUploads(r, card.ID, &card.Files)

	if err := a.cards.Create(card); err != nil {
		slog.Error("create card failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	flashes = append(flashes, session.Ok("Card created."))
	session.SetFlashes(w, flashes)
	http.Redirect(w, r, "/admin/cards/"+card.ID, http.StatusFound)
}

// CardEdit renders the edit form for one card.
func (a *Admin) CardEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	card, err := a.cards.Get(id)
	if err != nil {
		slog.Error("get card failed", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if card == nil {
		http.NotFound(w, r)
		return
	}

	a.render.Page(w, r, "admin_card_edit", &render.PageData{
		Title: "Edit: " + card.Title,
		Data: map[string]any{
			"card":     card,
			"sections": models.Sections,
			"action":   "/admin/cards/" + card.ID,
		},
	})
}

// CardUpdate applies the submitted form to the card.
func (a *Admin) CardUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	card, err := a.cards.Get(id)
	if err != nil {
		slog.Error("get card failed", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if card == nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if msg := validateTitle(title); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/cards/"+card.ID, http.StatusFound)
		return
	}

	description := r.FormValue("description")
	if msg := validateDescription(description); msg != "" {
		session.SetFlashes(w, []session.Flash{session.Error(msg)})
		http.Redirect(w, r, "/admin/cards/"+card.ID, http.StatusFound)
		return
	}

	card.Title = title
	card.Section = models.Section(r.FormValue("section"))
	card.Description = description

	flashes := a.saveUploads(r, card.ID, &card.Files)

	if err := a.cards.Upsert(card); err != nil {
		slog.Error("upsert card failed", "id", card.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	flashes = append(flashes, session.Ok("Card saved."))
	session.SetFlashes(w, flashes)
	http.Redirect(w, r, "/admin/cards/"+card.ID, http.StatusFound)
}

// CardDelete removes the card record and its whole upload folder.
func (a *Admin) CardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	deleted, err := a.cards.Delete(id)
	if err != nil {
		slog.Error("delete card failed", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if deleted {
		a.files.RemoveAll(id)
		session.SetFlashes(w, []session.Flash{session.Ok("Card deleted.")})
	} else {
		session.SetFlashes(w, []session.Flash{session.Error("Card not found.")})
	}
	http.Redirect(w, r, "/admin/cards", http.StatusFound)
}

// CardFileDelete removes one attachment from a card.
func (a *Admin) CardFileDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	name := r.FormValue("name")

	removed, err := a.cards.RemoveFile(id, name)
	if err != nil {
		slog.Error("remove card file failed", "id", id, "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if removed {
		a.files.Remove(id, name)
		session.SetFlashes(w, []session.Flash{session.Ok("File deleted.")})
	} else {
		session.SetFlashes(w, []session.Flash{session.Error("File not found.")})
	}
	http.Redirect(w, r, "/admin/cards/"+id, http.StatusFound)
}

// cardID extracts and sanitizes the card id URL parameter. A mixed-case
// id folds to its stored lowercase form; anything non-hex is rejected.
func cardID(r *http.Request) (string, bool) {
	return sanitize.ID(chi.URLParam(r, "id"))
}

// saveUploads stores the form's "files" field into the entity's folder,
// appends the saved attachments to dst, and returns one flash per
// rejected file. A storage failure becomes a flash too: the text fields
// should still save even when the disk write fails.
func (a *Admin) saveUploads(r *http.Request, entityID string, dst *[]models.Attachment) []session.Flash {
	var fhs []*multipart.FileHeader
	if r.MultipartForm != nil {
		fhs = r.MultipartForm.File["files"]
	}
	if len(fhs) == 0 {
		return nil
	}

	uploads := make([]storage.Upload, 0, len(fhs))
	opened := make([]multipart.File, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			slog.Warn("open upload failed", "name", fh.Filename, "error", err)
			continue
		}
		opened = append(opened, f)
		uploads = append(uploads, storage.Upload{Filename: fh.Filename, Data: f})
	}
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	result, err := a.files.SaveAll(entityID, uploads)
	*dst = append(*dst, result.Saved...)

	var flashes []session.Flash
	for _, name := range result.Rejected {
		flashes = append(flashes, session.Error(fmt.Sprintf("File type not allowed: %s", name)))
	}
	if err != nil {
		slog.Error("save uploads failed", "entity", entityID, "error", err)
		flashes = append(flashes, session.Error("Some files could not be saved."))
	}
	return flashes
}
