package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// attachCookies copies Set-Cookie headers from a recorder onto a new request.
func attachCookies(t *testing.T, rec *httptest.ResponseRecorder, r *http.Request) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(NewMemoryBackend(), false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	id, err := store.Create(ctx, rec, &Data{IsAdmin: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != 64 {
		t.Errorf("session id length: got %d", len(id))
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != id {
		t.Fatalf("session cookie: %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	attachCookies(t, rec, r)
	data, err := store.Get(ctx, r)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data == nil || !data.IsAdmin {
		t.Errorf("session data: %+v", data)
	}
	if data.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestStoreGetWithoutCookie(t *testing.T) {
	store := NewStore(NewMemoryBackend(), false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	data, err := store.Get(context.Background(), r)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil session, got %+v", data)
	}
}

func TestStoreDestroy(t *testing.T) {
	store := NewStore(NewMemoryBackend(), false)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	if _, err := store.Create(ctx, rec, &Data{IsAdmin: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	attachCookies(t, rec, r)

	rec2 := httptest.NewRecorder()
	if err := store.Destroy(ctx, rec2, r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Cookie expired on the response.
	cookies := rec2.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("expiry cookie: %+v", cookies)
	}

	// Backend entry gone.
	data, err := store.Get(ctx, r)
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if data != nil {
		t.Errorf("session survived destroy: %+v", data)
	}
}

func TestMemoryBackendExpiry(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	if err := b.Set(ctx, "abc", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	payload, err := b.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if payload != nil {
		t.Errorf("expected expired session to be gone, got %q", payload)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlashes(rec, []Flash{Ok("Page updated."), Error("File rejected.")})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	attachCookies(t, rec, r)

	rec2 := httptest.NewRecorder()
	flashes := PopFlashes(rec2, r)
	if len(flashes) != 2 {
		t.Fatalf("flashes: %+v", flashes)
	}
	if flashes[0].Type != "ok" || flashes[0].Message != "Page updated." {
		t.Errorf("first flash: %+v", flashes[0])
	}
	if flashes[1].Type != "error" {
		t.Errorf("second flash: %+v", flashes[1])
	}

	// Pop clears the cookie.
	cleared := rec2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Errorf("flash cookie not cleared: %+v", cleared)
	}
}

func TestPopFlashesEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if flashes := PopFlashes(httptest.NewRecorder(), r); flashes != nil {
		t.Errorf("expected nil without cookie, got %+v", flashes)
	}
}
