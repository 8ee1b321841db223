// Package config holds the env-driven server configuration.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// TCPAddr is the address the game listener binds.
	TCPAddr string `env:"TCP_ADDR" envDefault:":12345"`
	// HTTPAddr serves /healthz and the WebSocket bridge.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	// ResultsFile is where match results are appended on shutdown.
	ResultsFile string `env:"RESULTS_FILE" envDefault:"game_results.txt"`
	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
