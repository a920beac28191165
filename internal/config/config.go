// Package config loads and saves scanner configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is where a project keeps its configuration.
const FileName = ".tcpl.yaml"

// ErrExists is returned by SaveNew when a config file is already present.
var ErrExists = errors.New("config file already exists")

// Config holds all scanner configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Report  ReportConfig  `yaml:"report"`
	Git     GitConfig     `yaml:"git"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScanConfig controls which files a scan reads.
type ScanConfig struct {
	Extensions     []string `yaml:"extensions"`
	IgnorePatterns []string `yaml:"ignore_patterns"`
}

// ReportConfig carries the default view options.
type ReportConfig struct {
	TopFiles     int    `yaml:"top_files"`
	Sort         string `yaml:"sort"`
	Dependencies bool   `yaml:"dependencies"`
	Functions    int    `yaml:"functions"`
	Statements   bool   `yaml:"statements"`
}

// GitConfig controls commit annotation.
type GitConfig struct {
	// Depth is how many commits back annotation looks. Zero disables it.
	Depth int `yaml:"depth"`
}

// WatchConfig controls the rescan watcher.
type WatchConfig struct {
	// Debounce is a duration string such as "500ms".
	Debounce string `yaml:"debounce"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing is on disk.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:     []string{".php"},
			IgnorePatterns: []string{".git", "vendor", "node_modules", "cache"},
		},
		Report: ReportConfig{
			TopFiles:     10,
			Sort:         "complexity",
			Dependencies: true,
			Statements:   true,
		},
		Git: GitConfig{
			Depth: 0,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error, the
// defaults just stand. Environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SaveNew writes the configuration only when no file exists at path.
func (c *Config) SaveNew(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	return c.Save(path)
}

// DebounceDuration parses the watch debounce, falling back to 500ms when
// the string does not parse.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TCPL_TOP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Report.TopFiles = n
		}
	}
	if v := os.Getenv("TCPL_SORT"); v != "" {
		c.Report.Sort = v
	}
	if v := os.Getenv("TCPL_GIT_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Git.Depth = n
		}
	}
	if v := os.Getenv("TCPL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
