// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. The full router is exercised over httptest with a
// temp-dir record store and in-process sessions.
package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"flatpress/internal/config"
	"flatpress/internal/handlers"
	"flatpress/internal/recordstore"
	"flatpress/internal/render"
	"flatpress/internal/router"
	"flatpress/internal/session"
	"flatpress/internal/storage"
	"flatpress/internal/store"
)

const (
	testPassword  = "hunter2"
	testLoginPath = "/secret-login"
)

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	Cfg        *config.Config
	DB         *recordstore.Store
	Pages      *store.Pages
	Cards      *store.Cards
	Files      *storage.Manager
	Sessions   *session.Store
	UploadsDir string
	Server     *httptest.Server
	Client     *http.Client
}

var testSeeds = []store.SeedPage{
	{Slug: "telegram", ID: "a1b2c3d4e5", Title: "Join on Telegram", LinkURL: "https://t.me/flatpress"},
	{Slug: "analytics", ID: "b2c3d4e5f6", Title: "Analytics"},
	{Slug: "course", ID: "c3d4e5f607", Title: "Course"},
}

// newTestEnv creates a complete test environment with seeded pages, a
// running server, and a cookie-holding client.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()
	uploadsDir := filepath.Join(dataDir, "uploads")

	db, err := recordstore.Open(dataDir)
	if err != nil {
		t.Fatalf("recordstore.Open: %v", err)
	}
	if err := store.Seed(db, testSeeds); err != nil {
		t.Fatalf("seed: %v", err)
	}

	files, err := storage.NewManager(uploadsDir)
	if err != nil {
		t.Fatalf("storage.NewManager: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	cfg := &config.Config{
		Env:            "testing",
		AdminPassword:  testPassword,
		AdminLoginPath: testLoginPath,
		MaxUploadBytes: 10 << 20,
	}

	sessions := session.NewStore(session.NewMemoryBackend(), false)
	pages := store.NewPages(db)
	cards := store.NewCards(db)

	public := handlers.NewPublic(pages, cards, files, renderer)
	auth := handlers.NewAuth(cfg, sessions, renderer)
	admin := handlers.NewAdmin(pages, cards, files, renderer)

	srv := httptest.NewServer(router.New(cfg, sessions, public, auth, admin))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	return &testEnv{
		Cfg:        cfg,
		DB:         db,
		Pages:      pages,
		Cards:      cards,
		Files:      files,
		Sessions:   sessions,
		UploadsDir: uploadsDir,
		Server:     srv,
		Client:     &http.Client{Jar: jar},
	}
}

// csrfToken fetches the given path so the server issues a CSRF cookie,
// then returns the token value from the client's jar.
func (e *testEnv) csrfToken(t *testing.T, path string) string {
	t.Helper()

	resp, err := e.Client.Get(e.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	u, _ := url.Parse(e.Server.URL)
	for _, c := range e.Client.Jar.Cookies(u) {
		if c.Name == "fp_csrf" {
			return c.Value
		}
	}
	t.Fatalf("no csrf cookie after GET %s", path)
	return ""
}

// login authenticates the client as admin.
func (e *testEnv) login(t *testing.T) {
	t.Helper()

	token := e.csrfToken(t, testLoginPath)
	resp, err := e.Client.PostForm(e.Server.URL+testLoginPath, url.Values{
		"csrf_token": {token},
		"password":   {testPassword},
	})
	if err != nil {
		t.Fatalf("POST login: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// postForm submits a urlencoded form with the CSRF token included.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()

	form.Set("csrf_token", e.csrfToken(t, testLoginPath))
	resp, err := e.Client.PostForm(e.Server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// multipartFile is one file payload for postMultipart.
type multipartFile struct {
	field, name string
	content     []byte
}

// postMultipart submits a multipart form with fields, files, and the
// CSRF token included.
func (e *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, uploads []multipartFile) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("csrf_token", e.csrfToken(t, testLoginPath))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for _, f := range uploads {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(f.content)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.Client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// body reads and closes a response body.
func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// noRedirectGet issues a GET without following redirects, reusing the
// client's cookie jar.
func (e *testEnv) noRedirectGet(t *testing.T, path string) *http.Response {
	t.Helper()

	c := &http.Client{
		Jar: e.Client.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := c.Get(e.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func mustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected response to contain %q, got:\n%s", needle, haystack)
	}
}
