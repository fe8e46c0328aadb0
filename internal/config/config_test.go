package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Test.Duration != nil || cfg.Test.Save != nil {
		t.Fatalf("expected empty config, got %+v", cfg.Test)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[test]\nduration = 30\nsave = false\nbroadcast = \":9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Test.Duration == nil || *cfg.Test.Duration != 30 {
		t.Fatalf("unexpected duration: %v", cfg.Test.Duration)
	}
	if cfg.Test.Save == nil || *cfg.Test.Save {
		t.Fatalf("expected save=false")
	}
	if cfg.Test.Broadcast == nil || *cfg.Test.Broadcast != ":9000" {
		t.Fatalf("unexpected broadcast: %v", cfg.Test.Broadcast)
	}
	if cfg.Test.Texts != nil {
		t.Fatalf("expected texts unset")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[test]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "typetest", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "typetest", "typetest.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
