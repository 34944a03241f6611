// Package config loads application configuration from the environment and
// initializes logging.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration. Values come from VOICEBOT_*
// environment variables, optionally seeded from a .env file.
type Config struct {
	ServiceURL  string        `envconfig:"SERVICE_URL" default:"http://localhost:8000"`
	StoreURL    string        `envconfig:"STORE_URL"`
	StoreKey    string        `envconfig:"STORE_KEY"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("VOICEBOT", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init initializes logging from the loaded configuration.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(c.logLevel())

	log.Info().
		Str("service_url", c.ServiceURL).
		Str("store_url", c.StoreURL).
		Str("log_level", c.logLevel().String()).
		Msg("Application configuration loaded")
}

func (c *Config) logLevel() zerolog.Level {
	switch c.LogLevel {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO":
		return zerolog.InfoLevel
	case "warn", "WARN":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
