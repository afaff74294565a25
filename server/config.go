package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, loaded from environment variables.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"NIGHTMARKET_ADDR" envDefault:":1573"`
	// ContentDir holds the .lua content files.
	ContentDir string `env:"NIGHTMARKET_CONTENT_DIR" envDefault:"content"`
	// DBPath is the SQLite save database. Empty keeps saves in memory.
	DBPath string `env:"NIGHTMARKET_DB_PATH" envDefault:""`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
