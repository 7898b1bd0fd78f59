package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tryon-server/internal/http/handlers"
	"tryon-server/internal/middleware"
)

// NewRouter wires the middleware chain and the service's routes.
func NewRouter(app *handlers.App, logger zerolog.Logger, allowedOrigins []string, rateLimitPerMin int) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(allowedOrigins),
		middleware.Logger(logger),
	)

	r.Get("/health", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rateLimitPerMin, time.Minute))
		r.Post("/api/tryon", app.TryOn)
	})

	r.Get("/tmp/{name}", app.ServeTmp)
	r.Handle("/widget/*", handlers.WidgetAssets())
	r.Get("/", handlers.Demo)

	return r
}
