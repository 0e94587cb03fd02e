package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/intellinews/newsrec/internal/cache"
	"github.com/intellinews/newsrec/internal/config"
	"github.com/intellinews/newsrec/pkg/utils"
)

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8090
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestInitializeComponents_MockAndMemoryFallbacks(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "embeddings.db")
	cfg.Embedding.ModelPath = ""
	cfg.Cache.RedisAddr = ""
	cfg.Cache.TTLSeconds = int(time.Hour / time.Second)

	logger, err := utils.NewLogger(false)
	if err != nil {
		t.Fatal(err)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()

	if components.Embedder.Dimensions() != cfg.Embedding.Dimensions {
		t.Errorf("dimensions: got %d, want %d",
			components.Embedder.Dimensions(), cfg.Embedding.Dimensions)
	}
	if _, ok := components.Cache.(*cache.MemoryCache); !ok {
		t.Errorf("expected memory cache without redis_addr, got %T", components.Cache)
	}
	if components.Service == nil {
		t.Error("expected service to be wired")
	}
}
