package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/db.sqlite
vision:
  provider: ollama
  models: [llava]
export:
  font_size: 12
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Server.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "data/db.sqlite") {
		t.Errorf("./ path should expand relative to config dir, got %s", cfg.Storage.DatabasePath)
	}
	if cfg.Vision.Provider != "ollama" || len(cfg.Vision.Models) != 1 {
		t.Errorf("vision = %+v", cfg.Vision)
	}
	// Unset values fall back to defaults.
	if cfg.Export.FontName != "Calibri" || cfg.Export.LineSpacing != 1.15 {
		t.Errorf("export defaults not applied: %+v", cfg.Export)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Vision.Provider != "googleai" || len(cfg.Vision.Models) != 3 {
		t.Errorf("vision defaults: %+v", cfg.Vision)
	}
	if cfg.Vision.Models[0] != "gemini-2.0-flash-exp" {
		t.Errorf("model fallback order: %v", cfg.Vision.Models)
	}
	if cfg.Export.FontSize != 11 || cfg.Export.MarginInches != 1 {
		t.Errorf("export defaults: %+v", cfg.Export)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
