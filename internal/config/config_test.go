package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `listen: "0.0.0.0:6380"
token_file: "/custom/token"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Listen != "0.0.0.0:6380" {
		t.Errorf("Listen = %q, want 0.0.0.0:6380", cfg.Listen)
	}
	if cfg.TokenFile != "/custom/token" {
		t.Errorf("TokenFile = %q, want /custom/token", cfg.TokenFile)
	}
}

func TestLoadFromMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("expected no error for a missing file, got: %v", err)
	}
	if cfg.Listen != "" || cfg.TokenFile != "" {
		t.Fatalf("expected an empty config, got %+v", cfg)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected an error for invalid YAML")
	}
}

func TestLoadFromEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Listen != "" || cfg.TokenFile != "" {
		t.Fatalf("expected an empty config for an empty file, got %+v", cfg)
	}
}
