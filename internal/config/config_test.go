package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, homeDir, contents string) {
	t.Helper()
	deckDir := filepath.Join(homeDir, DeckDir)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deckDir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	homeDir := t.TempDir()
	writeConfig(t, homeDir, strings.TrimSpace(`
version: 1
service:
  base_url: https://orders.example.com/
  image_base_url: https://img.example.com
  image_placeholder: https://img.example.com/blank.png
  timeout_seconds: 30
`))
	cfg, err := NewConfig(homeDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.BaseURL() != "https://orders.example.com" {
		t.Fatalf("base url = %q (trailing slash must be trimmed)", cfg.BaseURL())
	}
	if cfg.ImageBaseURL() != "https://img.example.com" {
		t.Fatalf("image base url = %q", cfg.ImageBaseURL())
	}
	if cfg.RequestTimeout().Seconds() != 30 {
		t.Fatalf("timeout = %v", cfg.RequestTimeout())
	}
}

func TestNewConfigRequiresBaseURL(t *testing.T) {
	homeDir := t.TempDir()
	writeConfig(t, homeDir, "version: 1\n")
	if _, err := NewConfig(homeDir); err == nil {
		t.Fatalf("expected validation error without base_url")
	}
}

func TestImageBaseDefaultsToServiceBase(t *testing.T) {
	homeDir := t.TempDir()
	writeConfig(t, homeDir, strings.TrimSpace(`
version: 1
service:
  base_url: https://orders.example.com
`))
	cfg, err := NewConfig(homeDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.ImageBaseURL() != cfg.BaseURL() {
		t.Fatalf("image base = %q, want service base", cfg.ImageBaseURL())
	}
	if cfg.RequestTimeout().Seconds() != defaultTimeoutSeconds {
		t.Fatalf("timeout must default, got %v", cfg.RequestTimeout())
	}
}

func TestEnvOverrides(t *testing.T) {
	homeDir := t.TempDir()
	writeConfig(t, homeDir, strings.TrimSpace(`
version: 1
service:
  base_url: https://orders.example.com
`))
	t.Setenv("ORDERDECK_SERVICE_URL", "https://staging.example.com/")
	t.Setenv("ORDERDECK_TIMEOUT_SECONDS", "5")
	cfg, err := NewConfig(homeDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.BaseURL() != "https://staging.example.com" {
		t.Fatalf("env override lost: %q", cfg.BaseURL())
	}
	if cfg.RequestTimeout().Seconds() != 5 {
		t.Fatalf("timeout override lost: %v", cfg.RequestTimeout())
	}
}

func TestInitDeckDirCreatesStructure(t *testing.T) {
	homeDir := t.TempDir()
	if err := InitDeckDir(homeDir); err != nil {
		t.Fatalf("InitDeckDir: %v", err)
	}
	for _, dir := range []string{"logs", "state"} {
		path := filepath.Join(homeDir, DeckDir, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing directory %s: %v", path, err)
		}
	}
	seeded := filepath.Join(homeDir, DeckDir, "config.yaml")
	if _, err := os.Stat(seeded); err != nil {
		t.Fatalf("missing seeded config: %v", err)
	}
	// A second init must not clobber an existing config file.
	if err := os.WriteFile(seeded, []byte("version: 1\nservice:\n  base_url: https://x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitDeckDir(homeDir); err != nil {
		t.Fatalf("second InitDeckDir: %v", err)
	}
	data, err := os.ReadFile(seeded)
	if err != nil || !strings.Contains(string(data), "https://x") {
		t.Fatalf("re-init clobbered config: %v %q", err, data)
	}
}
