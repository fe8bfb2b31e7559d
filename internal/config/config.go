// Package config loads the CLI configuration from YAML. A missing file
// yields the defaults; fields absent from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"srctree/internal/cache"
	"srctree/internal/outline"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the CLI configuration.
type Config struct {
	IndentWidth   int           `yaml:"indentWidth"`
	TabWidth      int           `yaml:"tabWidth"`
	CacheDir      string        `yaml:"cacheDir"`
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"`
	Include       []string      `yaml:"include"`
	Exclude       []string      `yaml:"exclude"`
	UseGitignore  bool          `yaml:"useGitignore"`
	MaxFileBytes  int64         `yaml:"maxFileBytes"`
	WatchDebounce time.Duration `yaml:"watchDebounce"`
	Workers       int           `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IndentWidth:   4,
		TabWidth:      8,
		CacheDir:      cache.DefaultRoot,
		LogLevel:      "info",
		LogFormat:     "text",
		Exclude:       []string{".git/**", "node_modules/**", "tmp/**", "**/*.min.js"},
		UseGitignore:  true,
		MaxFileBytes:  2 << 20,
		WatchDebounce: 300 * time.Millisecond,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Load reads path over the defaults. An empty path or a missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent field.
func (c Config) Validate() error {
	switch {
	case c.IndentWidth < 1:
		return fmt.Errorf("%w: indentWidth must be >= 1, got %d", ErrInvalid, c.IndentWidth)
	case c.TabWidth < 1:
		return fmt.Errorf("%w: tabWidth must be >= 1, got %d", ErrInvalid, c.TabWidth)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalid, c.Workers)
	case c.WatchDebounce < 0:
		return fmt.Errorf("%w: watchDebounce must not be negative", ErrInvalid)
	case c.MaxFileBytes < 0:
		return fmt.Errorf("%w: maxFileBytes must not be negative", ErrInvalid)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logFormat must be text or json, got %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// ParseOptions returns the outline options derived from the config.
func (c Config) ParseOptions(htmlFilter bool) outline.Options {
	return outline.Options{IndentWidth: c.IndentWidth, TabWidth: c.TabWidth, HTMLFilter: htmlFilter}
}
