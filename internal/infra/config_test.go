package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "GEMINI_API_KEY", "API_KEY", "GEMINI_TEXT_MODEL", "GEMINI_IMAGE_MODEL",
		"GEMINI_VIDEO_MODEL", "VIDEO_POLL_INTERVAL_SECONDS", "VIDEO_COOLDOWN_MINUTES", "STATE_BACKEND",
		"STATE_PATH", "DATABASE_URL", "MAX_CONCURRENT_RUNS", "RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StateBackend != StateBackendFile {
		t.Fatalf("StateBackend = %q, want %q", cfg.StateBackend, StateBackendFile)
	}
	if cfg.VideoPollInterval != 10*time.Second {
		t.Fatalf("VideoPollInterval = %s, want 10s", cfg.VideoPollInterval)
	}
	if cfg.VideoCooldown != time.Hour {
		t.Fatalf("VideoCooldown = %s, want 1h", cfg.VideoCooldown)
	}
	if cfg.GeminiTextModel != "gemini-2.5-flash" {
		t.Fatalf("GeminiTextModel = %q", cfg.GeminiTextModel)
	}
	if !cfg.Synthetic() {
		t.Fatal("expected synthetic mode without an API key")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigFallsBackToLegacyAPIKey(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("API_KEY", " legacy-key ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Fatalf("GeminiAPIKey = %q, want %q", cfg.GeminiAPIKey, "legacy-key")
	}
	if cfg.Synthetic() {
		t.Fatal("Synthetic() = true with an API key")
	}
}

func TestLoadConfigPostgresRequiresDatabaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STATE_BACKEND", "postgres")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StateBackend != StateBackendPostgres {
		t.Fatalf("StateBackend = %q", cfg.StateBackend)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STATE_BACKEND", "etcd")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadConfigParsesOriginsAndIntervals(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("VIDEO_POLL_INTERVAL_SECONDS", "2")
	t.Setenv("VIDEO_COOLDOWN_MINUTES", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %#v, want %#v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
	if cfg.VideoPollInterval != 2*time.Second || cfg.VideoCooldown != 5*time.Minute {
		t.Fatalf("intervals = %s/%s", cfg.VideoPollInterval, cfg.VideoCooldown)
	}
}
