package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Database.Path != "./evalvault.db" {
		t.Errorf("Database.Path = %s, want ./evalvault.db", cfg.Database.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
	}

	// Explicit values survive
	cfg = Config{Database: DatabaseConfig{Path: "/var/lib/evalvault/data.db"}, Log: LogConfig{Level: "debug"}}
	cfg.applyDefaults()
	if cfg.Database.Path != "/var/lib/evalvault/data.db" {
		t.Errorf("Database.Path = %s, should be preserved", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, should be preserved", cfg.Log.Level)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/tmp/research.db"
	cfg.Log.Level = "warn"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Database.Path != "/tmp/research.db" {
		t.Errorf("Database.Path = %s, want /tmp/research.db", loaded.Database.Path)
	}
	if loaded.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", loaded.Log.Level)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, _, err := LoadFromPath("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFromPath() should fail for a missing file")
	}
}

func TestLoadFromPathAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Partial config omitting the log section
	partial := []byte("version: 1\ndatabase:\n  path: /tmp/partial.db\n")
	if err := os.WriteFile(configPath, partial, 0644); err != nil {
		t.Fatalf("write partial config: %v", err)
	}

	loaded, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info (default)", loaded.Log.Level)
	}
	if loaded.Database.Path != "/tmp/partial.db" {
		t.Errorf("Database.Path = %s, want /tmp/partial.db", loaded.Database.Path)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	os.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	defer os.Unsetenv(EnvConfigPath)

	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	summary := cfg.Summary()
	if summary == "" {
		t.Error("Summary() should not be empty")
	}
}
