// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin interface. Templates are embedded at compile time; each page
// template is paired with the base layout.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"flatpress/internal/markdown"
	"flatpress/internal/middleware"
	"flatpress/internal/models"
	"flatpress/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string          // page title for the <title> tag
	IsAdmin   bool            // whether the current visitor holds the admin session
	CSRFToken string          // token for hidden form fields
	Flashes   []session.Flash // one-time notification messages
	Data      map[string]any  // page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
}

// standaloneTemplates render as full HTML pages without the base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// funcMap holds the helpers available to every template.
var funcMap = template.FuncMap{
	// markdown renders admin-authored Markdown to HTML. The output is
	// marked safe: this is a single-author system.
	"markdown": func(source string) template.HTML {
		out, err := markdown.ToHTML(source)
		if err != nil {
			return template.HTML(template.HTMLEscapeString(source))
		}
		return template.HTML(out)
	},
	// sectionLabel maps a section tag to its display name.
	"sectionLabel": func(s models.Section) string {
		return s.Label()
	},
	// isImage tells galleries whether to show an <img> or a plain link.
	"isImage": func(ext string) bool {
		switch ext {
		case "jpg", "jpeg", "png", "gif", "webp":
			return true
		}
		return false
	},
	// thumbURL rewrites an upload URL to its thumbnail route.
	"thumbURL": func(url string) string {
		i := strings.LastIndex(url, "/")
		if i < 0 {
			return url
		}
		return url[:i] + "/thumb" + url[i:]
	},
	// isVideo selects the <video> player for movie attachments.
	"isVideo": func(ext string) bool {
		switch ext {
		case "mp4", "webm", "mov":
			return true
		}
		return false
	},
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout unless it
// is marked standalone.
func New() (*Renderer, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	rn := &Renderer{templates: make(map[string]*template.Template)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(
				templateFS, "templates/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		rn.templates[tmplName] = tmpl
	}
	return rn, nil
}

// Page renders the named template inside the base layout (or standalone),
// injecting the CSRF token, admin flag, and pending flash messages.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.GetCSRFToken(r)
	data.IsAdmin = middleware.IsAdmin(r.Context())
	if data.Flashes == nil {
		data.Flashes = session.PopFlashes(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
