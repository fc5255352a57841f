package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// State backends for the client key-value store.
const (
	StateBackendMemory   = "memory"
	StateBackendFile     = "file"
	StateBackendPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiVideoModel string

	VideoPollInterval time.Duration
	VideoCooldown     time.Duration

	StateBackend string
	StatePath    string
	DatabaseURL  string

	MaxConcurrentRuns  int
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	ExportDir          string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadDotEnv reads .env files when present. Missing files are not an error.
func LoadDotEnv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       strings.TrimSpace(getEnv("GEMINI_API_KEY", os.Getenv("API_KEY"))),
		GeminiTextModel:    getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		GeminiVideoModel:   getEnv("GEMINI_VIDEO_MODEL", "veo-2.0-generate-001"),
		VideoPollInterval:  time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		VideoCooldown:      time.Minute * time.Duration(getEnvInt("VIDEO_COOLDOWN_MINUTES", 60)),
		StateBackend:       strings.ToLower(getEnv("STATE_BACKEND", StateBackendFile)),
		StatePath:          getEnv("STATE_PATH", "./state/preferences.json"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MaxConcurrentRuns:  getEnvInt("MAX_CONCURRENT_RUNS", 2),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		ExportDir:          getEnv("EXPORT_DIR", "./exports"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.StateBackend {
	case StateBackendMemory, StateBackendFile:
	case StateBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STATE_BACKEND=%s", StateBackendPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported STATE_BACKEND %q", cfg.StateBackend)
	}

	if cfg.VideoPollInterval <= 0 {
		return nil, fmt.Errorf("VIDEO_POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.VideoCooldown < 0 {
		return nil, fmt.Errorf("VIDEO_COOLDOWN_MINUTES must not be negative")
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}

	return cfg, nil
}

// Synthetic reports whether generation runs without a provider key.
func (c *Config) Synthetic() bool {
	return c.GeminiAPIKey == ""
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

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
