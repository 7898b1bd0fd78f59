package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	PublicBaseURL  string
	AllowedOrigins []string

	Provider     string
	FalKey       string
	FalBaseURL   string
	GeminiAPIKey string
	GeminiModel  string

	TmpDir         string
	MaxUploadBytes int64
	MaxImageSide   int
	ArtifactTTL    time.Duration
	SweepInterval  time.Duration

	RateLimitPerMin  int
	ProviderTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The key for the selected provider is the only
// required setting.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8787")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
		Provider:         getEnv("TRYON_PROVIDER", "fal"),
		FalKey:           os.Getenv("FAL_KEY"),
		FalBaseURL:       getEnv("FAL_BASE_URL", "https://api.fal.ai"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		TmpDir:           getEnv("TMP_DIR", ".tmp"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		MaxImageSide:     getEnvInt("MAX_IMAGE_SIDE", 1536),
		ArtifactTTL:      time.Minute * time.Duration(getEnvInt("DELETE_AFTER_MINUTES", 60)),
		SweepInterval:    time.Second * time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.Provider {
	case "fal":
		if cfg.FalKey == "" {
			return nil, fmt.Errorf("FAL_KEY is required when TRYON_PROVIDER=fal")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when TRYON_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unsupported TRYON_PROVIDER %q", cfg.Provider)
	}

	if cfg.ArtifactTTL <= 0 {
		return nil, fmt.Errorf("DELETE_AFTER_MINUTES must be positive")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
