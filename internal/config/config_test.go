package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.AdvisoryTimeout != 60*time.Second {
		t.Errorf("advisory timeout = %v", cfg.AdvisoryTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
}

func TestLoadMissingFileIsOptional(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should be skipped: %v", err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9000\"\nollama:\n  host: http://file:11434\n  gen_model: mistral\nsession_ttl: 10m\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OLLAMA_HOST", "http://env:11434")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Ollama.Host != "http://env:11434" {
		t.Errorf("env override lost: %q", cfg.Ollama.Host)
	}
	if cfg.Ollama.GenModel != "mistral" {
		t.Errorf("gen model = %q", cfg.Ollama.GenModel)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
}
