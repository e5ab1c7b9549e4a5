package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatTitle    = "title"
)

const (
	defaultMaxInputBytes = 16 << 20
	defaultFetchTimeout  = 30 * time.Second
	defaultUserAgent     = "minidom/1.0"
)

// Config holds the minidom command configuration. Select, when set,
// restricts output to the elements matching a CSS selector.
type Config struct {
	Format        string         `yaml:"format"`
	LogLevel      string         `yaml:"log_level"`
	MaxInputBytes int64          `yaml:"max_input_bytes"`
	StrictExport  bool           `yaml:"strict_export"`
	Select        string         `yaml:"select"`
	Markdown      MarkdownConfig `yaml:"markdown"`
	Fetch         FetchConfig    `yaml:"fetch"`
}

// MarkdownConfig controls markdown output.
type MarkdownConfig struct {
	// Domain is the base URL relative links are resolved against.
	Domain string `yaml:"domain"`
}

// FetchConfig controls how URL inputs are downloaded.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

func (c *Config) defaults() {
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxInputBytes <= 0 {
		c.MaxInputBytes = defaultMaxInputBytes
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = defaultFetchTimeout
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) validate() error {
	switch c.Format {
	case FormatText, FormatMarkdown, FormatHTML, FormatTitle:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Select != "" {
		if _, err := cascadia.ParseGroup(c.Select); err != nil {
			return fmt.Errorf("invalid select %q: %w", c.Select, err)
		}
	}
	return nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// LoadConfigFile reads a YAML config file and fills in defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
