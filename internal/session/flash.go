package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie carries one-shot notification messages across a redirect.
const flashCookie = "fp_flash"

// Flash is a one-time notification message displayed to the user on the
// next rendered page.
type Flash struct {
	Type    string `json:"type"` // "ok" or "error"
	Message string `json:"message"`
}

// Ok builds a success flash.
func Ok(message string) Flash {
	return Flash{Type: "ok", Message: message}
}

// Error builds an error flash.
func Error(message string) Flash {
	return Flash{Type: "error", Message: message}
}

// SetFlashes stores the messages in a short-lived cookie, to be consumed
// by the next render. An empty slice is a no-op.
func SetFlashes(w http.ResponseWriter, flashes []Flash) {
	if len(flashes) == 0 {
		return
	}
	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlashes reads and clears the pending flash messages. A malformed
// cookie is dropped silently.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
