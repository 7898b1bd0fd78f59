package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tryon-server/internal/infra"
	"tryon-server/internal/providers/tryon"
	"tryon-server/internal/storage"
)

// App bundles the handler dependencies: the temp artifact store, the
// configured generation provider, and request bounds from config.
type App struct {
	Logger          zerolog.Logger
	Store           *storage.TempStore
	Provider        tryon.Provider
	PublicBaseURL   string
	MaxUploadBytes  int64
	MaxImageSide    int
	ProviderTimeout time.Duration
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, store *storage.TempStore, provider tryon.Provider) *App {
	return &App{
		Logger:          logger,
		Store:           store,
		Provider:        provider,
		PublicBaseURL:   cfg.PublicBaseURL,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		MaxImageSide:    cfg.MaxImageSide,
		ProviderTimeout: cfg.ProviderTimeout,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// publicTmpURL builds the retrievable URL for a temp artifact. The URL stops
// resolving once the artifact's TTL expires.
func (a *App) publicTmpURL(name string) string {
	return a.PublicBaseURL + "/tmp/" + name
}
