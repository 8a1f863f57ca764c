// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"flatpress/internal/models"
)

func TestIndexShowsSeededPages(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.Client.Get(env.Server.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	b := body(t, resp)
	mustContain(t, b, "Join on Telegram")
	mustContain(t, b, "Analytics")
	mustContain(t, b, "Course")
	// Link pages point at their external URL from the landing page.
	mustContain(t, b, `href="https://t.me/flatpress"`)
}

func TestIndexGroupsCardsBySection(t *testing.T) {
	env := newTestEnv(t)

	for _, c := range []models.Card{
		{Title: "Weekly digest", Section: models.SectionResearch},
		{Title: "Entry signal", Section: models.SectionSignals},
	} {
		card := c
		if err := env.Cards.Create(&card); err != nil {
			t.Fatalf("create card: %v", err)
		}
	}

	resp, err := env.Client.Get(env.Server.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	b := body(t, resp)
	mustContain(t, b, "Weekly digest")
	mustContain(t, b, "Entry signal")
	mustContain(t, b, models.SectionResearch.Label())
	mustContain(t, b, models.SectionSignals.Label())
}

func TestPageViewRendersMarkdown(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.Pages.Get("analytics")
	if err != nil || page == nil {
		t.Fatalf("get analytics page: %v", err)
	}
	page.Description = "Numbers are **important**."
	if err := env.Pages.Upsert(page); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resp, err := env.Client.Get(env.Server.URL + "/p/analytics")
	if err != nil {
		t.Fatalf("GET /p/analytics: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	mustContain(t, body(t, resp), "<strong>important</strong>")
}

func TestLinkPageRedirectsExternally(t *testing.T) {
	env := newTestEnv(t)

	resp := env.noRedirectGet(t, "/p/telegram")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://t.me/flatpress" {
		t.Errorf("Location = %q", loc)
	}
}

func TestUnknownPageAndCardAre404(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/p/nope", "/c/ffffffffffffffffffffffffffffffff"} {
		resp, err := env.Client.Get(env.Server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestCardViewShowsAttachments(t *testing.T) {
	env := newTestEnv(t)

	card := &models.Card{Title: "With files", Section: models.SectionEducation}
	if err := env.Cards.Create(card); err != nil {
		t.Fatalf("create: %v", err)
	}
	card.Files = append(card.Files, models.Attachment{Name: "notes.txt", Ext: "txt"})
	if err := env.Cards.Upsert(card); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resp, err := env.Client.Get(env.Server.URL + "/c/" + card.ID)
	if err != nil {
		t.Fatalf("GET card: %v", err)
	}
	b := body(t, resp)
	// The URL is derived at read time from the card id and file name.
	mustContain(t, b, "/uploads/"+card.ID+"/notes.txt")
}

func TestServeUploadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.postMultipart(t, "/admin/pages/analytics", map[string]string{
		"title": "Analytics",
	}, []multipartFile{
		{field: "files", name: "report.txt", content: []byte("quarterly numbers")},
	})
	body(t, resp)

	got, err := env.Client.Get(env.Server.URL + "/uploads/b2c3d4e5f6/report.txt")
	if err != nil {
		t.Fatalf("GET upload: %v", err)
	}
	if got.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", got.StatusCode)
	}
	if b := body(t, got); b != "quarterly numbers" {
		t.Errorf("served content = %q", b)
	}
}

func TestServeUploadRejectsTraversal(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/uploads/b2c3d4e5f6/..%2Fsecret.txt",
		"/uploads/..%2Fb2c3d4e5f6/file.txt",
		"/uploads/not-a-valid-id/file.txt",
	} {
		resp, err := env.Client.Get(env.Server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.Client.Get(env.Server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	b := body(t, resp)
	if !strings.Contains(b, `"status":"ok"`) {
		t.Errorf("health body = %q", b)
	}
}

func TestCardViewFoldsUppercaseID(t *testing.T) {
	env := newTestEnv(t)

	card := &models.Card{Title: "Folded id", Section: models.SectionEducation}
	if err := env.Cards.Create(card); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Ids are stored lowercase; a shouty link must still resolve.
	resp, err := env.Client.Get(env.Server.URL + "/c/" + strings.ToUpper(card.ID))
	if err != nil {
		t.Fatalf("GET card: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	mustContain(t, body(t, resp), "Folded id")
}
