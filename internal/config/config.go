// Package config loads runtime settings: an optional YAML file for tuning
// knobs, with environment variables taking precedence for deployment
// concerns (port, database, model host).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	Ollama struct {
		Host       string `yaml:"host"`
		GenModel   string `yaml:"gen_model"`
		EmbedModel string `yaml:"embed_model"`
	} `yaml:"ollama"`

	AdvisoryTimeout time.Duration `yaml:"advisory_timeout"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional file
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AdvisoryTimeout <= 0 {
		cfg.AdvisoryTimeout = 60 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return cfg, nil
}
