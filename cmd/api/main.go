package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tryon-server/internal/http/handlers"
	httpapi "tryon-server/internal/http/httpapi"
	"tryon-server/internal/infra"
	"tryon-server/internal/providers/tryon"
	"tryon-server/internal/storage"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewTempStore(cfg.TmpDir, cfg.ArtifactTTL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize temp store")
	}

	// TTL sweep is the only background activity.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go store.Sweep(sweepCtx, cfg.SweepInterval)

	var provider tryon.Provider
	switch cfg.Provider {
	case "gemini":
		provider, err = tryon.NewGeminiProvider(context.Background(), tryon.GeminiOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize gemini provider")
		}
	default:
		provider = tryon.NewFalClient(tryon.FalOptions{
			APIKey:  cfg.FalKey,
			BaseURL: cfg.FalBaseURL,
			Timeout: cfg.ProviderTimeout,
		})
	}
	logger.Info().Str("provider", cfg.Provider).Dur("artifact_ttl", cfg.ArtifactTTL).Msg("try-on service configured")

	app := handlers.NewApp(cfg, logger, store, provider)
	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins, cfg.RateLimitPerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
