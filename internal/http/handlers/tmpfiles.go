package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ServeTmp serves a temp artifact by name: the sanitized selfie (fetched by
// the provider) or a generated result (fetched by the widget). Expired or
// unknown names are indistinguishable 404s.
func (a *App) ServeTmp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, created, err := a.Store.Open(name)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeForName(name))
	// Cache briefly; the artifact disappears at TTL.
	w.Header().Set("Cache-Control", "private, max-age=60")
	http.ServeContent(w, r, name, created, rc)
}

func contentTypeForName(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
