package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment. The Flux
// API key comes either directly from FLUX_API_KEY or, when
// FLUX_API_KEY_PARAM is set, from that AWS Parameter Store path.
type Config struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	FluxBaseURL     string        `env:"FLUX_BASE_URL" envDefault:"https://api.us1.bfl.ai/v1"`
	FluxAPIKey      string        `env:"FLUX_API_KEY"`
	FluxAPIKeyParam string        `env:"FLUX_API_KEY_PARAM"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	MaxPollAttempts int           `env:"MAX_POLL_ATTEMPTS" envDefault:"60"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ImageTTL        time.Duration `env:"IMAGE_TTL" envDefault:"5m"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
