package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr: got %q", cfg.ListenAddr)
	}
	if cfg.FluxBaseURL != "https://api.us1.bfl.ai/v1" {
		t.Errorf("base url: got %q", cfg.FluxBaseURL)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("poll interval: got %s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 60 {
		t.Errorf("max poll attempts: got %d", cfg.MaxPollAttempts)
	}
	if cfg.ImageTTL != 5*time.Minute {
		t.Errorf("image ttl: got %s", cfg.ImageTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("POLL_INTERVAL", "50ms")
	t.Setenv("MAX_POLL_ATTEMPTS", "10")
	t.Setenv("FLUX_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen addr: got %q", cfg.ListenAddr)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("poll interval: got %s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 10 {
		t.Errorf("max poll attempts: got %d", cfg.MaxPollAttempts)
	}
	if cfg.FluxAPIKey != "secret" {
		t.Errorf("api key: got %q", cfg.FluxAPIKey)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
