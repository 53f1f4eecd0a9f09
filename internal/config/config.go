// internal/config/config.go
//
// This package handles configuration and the .orderdeck directory structure.
// The console keeps its config file, logs, and session token under a single
// .orderdeck/ folder in the operator's home directory (overridable for tests).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DeckDir is the name of the directory we create for the console.
	DeckDir = ".orderdeck"

	defaultTimeoutSeconds = 15
)

const defaultConfigYAML = `# orderdeck configuration
version: 1

service:
  # Base URL of the order service. Required.
  base_url: ""
  # Base URL images resolve against. Defaults to base_url.
  image_base_url: ""
  # Shown when an order carries no image reference.
  image_placeholder: ""
  # Per-request timeout in seconds.
  timeout_seconds: 15
`

// ServiceConfig points the console at the remote order service.
type ServiceConfig struct {
	BaseURL          string `yaml:"base_url"`
	ImageBaseURL     string `yaml:"image_base_url,omitempty"`
	ImagePlaceholder string `yaml:"image_placeholder,omitempty"`
	TimeoutSeconds   int    `yaml:"timeout_seconds,omitempty"`
}

// FileConfig models .orderdeck/config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	Service ServiceConfig `yaml:"service"`
}

// Config holds the runtime configuration for the console.
type Config struct {
	// HomeDir is the directory holding the .orderdeck folder.
	HomeDir string

	// DeckHomeDir is HomeDir/.orderdeck
	DeckHomeDir string

	File FileConfig
}

// InitDeckDir creates the .orderdeck directory structure under the given
// home directory and seeds a commented config file on first run.
//
// Structure created:
// .orderdeck/
// ├── logs/     <- console log + activity journal
// └── state/    <- session token
func InitDeckDir(homeDir string) error {
	deckDir := filepath.Join(homeDir, DeckDir)
	dirs := []string{
		filepath.Join(deckDir, "logs"),
		filepath.Join(deckDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(deckDir, "config.yaml"))
}

// NewConfig loads configuration for the console rooted at homeDir.
func NewConfig(homeDir string) (*Config, error) {
	cfg := &Config{
		HomeDir:     homeDir,
		DeckHomeDir: filepath.Join(homeDir, DeckDir),
		File:        defaultFileConfig(),
	}
	if err := cfg.loadFileConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.File.normalize()
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DeckHomeDir, "logs")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.DeckHomeDir, "state")
}

// TokenPath returns the on-disk location of the session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.StateDir(), "token")
}

// JournalPath returns the on-disk location of the activity journal.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "activity.log")
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DeckHomeDir, "config.yaml")
}

// BaseURL returns the order service base URL.
func (c *Config) BaseURL() string { return c.File.Service.BaseURL }

// ImageBaseURL returns the base URL image paths resolve against.
func (c *Config) ImageBaseURL() string { return c.File.Service.ImageBaseURL }

// ImagePlaceholder returns the URL rendered when an order has no image.
func (c *Config) ImagePlaceholder() string { return c.File.Service.ImagePlaceholder }

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.File.Service.TimeoutSeconds) * time.Second
}

// String returns a loggable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{service: %s, timeout: %ds}",
		c.File.Service.BaseURL, c.File.Service.TimeoutSeconds)
}

func (c *Config) loadFileConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.File = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("ORDERDECK_SERVICE_URL")); value != "" {
		c.File.Service.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("ORDERDECK_IMAGE_URL")); value != "" {
		c.File.Service.ImageBaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("ORDERDECK_TIMEOUT_SECONDS")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			c.File.Service.TimeoutSeconds = parsed
		}
	}
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Service: ServiceConfig{TimeoutSeconds: defaultTimeoutSeconds},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.Service.TimeoutSeconds == 0 {
		fc.Service.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (fc *FileConfig) normalize() {
	fc.Service.BaseURL = strings.TrimRight(strings.TrimSpace(fc.Service.BaseURL), "/")
	fc.Service.ImageBaseURL = strings.TrimRight(strings.TrimSpace(fc.Service.ImageBaseURL), "/")
	fc.Service.ImagePlaceholder = strings.TrimSpace(fc.Service.ImagePlaceholder)
	if fc.Service.ImageBaseURL == "" {
		fc.Service.ImageBaseURL = fc.Service.BaseURL
	}
	if fc.Service.TimeoutSeconds <= 0 {
		fc.Service.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (fc FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if fc.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required (or set ORDERDECK_SERVICE_URL)")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
