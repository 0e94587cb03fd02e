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
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
content:
  base_url: "http://news:8080"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Content.BaseURL != "http://news:8080" {
		t.Errorf("unexpected content config: %+v", cfg.Content)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "test.db") {
		t.Errorf("expected ./ path relative to config dir, got %s", cfg.Storage.DatabasePath)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected 768 dimensions, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Recommend.MinScore != 0.10 {
		t.Errorf("expected 0.10 min score, got %f", cfg.Recommend.MinScore)
	}
	if cfg.Recommend.DefaultLimit != 10 || cfg.Recommend.MaxLimit != 50 {
		t.Errorf("unexpected limits: %+v", cfg.Recommend)
	}
	if cfg.Cache.TTLSeconds != 3600 {
		t.Errorf("expected 1h cache TTL, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Content.CategoryScanPageSize != 200 {
		t.Errorf("expected 200 scan page size, got %d", cfg.Content.CategoryScanPageSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
