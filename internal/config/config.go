// Package config loads rulekit settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xxxbrian/surge-rulekit/internal/profile"
	"github.com/xxxbrian/surge-rulekit/internal/rulelist"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "rulekit.yaml"

// Config holds all rulekit settings.
type Config struct {
	Root        string `yaml:"root"`
	Workers     int    `yaml:"workers"`
	LogLevel    string `yaml:"log_level"`
	DryRun      bool   `yaml:"dry_run"`
	Strict      bool   `yaml:"strict"`
	GeoIPDB     string `yaml:"geoip_db"`
	MetricsFile string `yaml:"metrics_file"`

	List struct {
		Extensions    []string `yaml:"extensions"`
		Title         string   `yaml:"title"`
		UpdatedMarker string   `yaml:"updated_marker"`
		CountMarker   string   `yaml:"count_marker"`
	} `yaml:"list"`

	Profile struct {
		Extensions []string `yaml:"extensions"`
		RuleLabel  string   `yaml:"rule_label"`
		GroupLabel string   `yaml:"group_label"`
	} `yaml:"profile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Root:     ".",
		Workers:  4,
		LogLevel: "info",
	}
	cfg.List.Extensions = []string{".list"}
	cfg.List.Title = rulelist.DefaultTitle
	cfg.List.UpdatedMarker = rulelist.DefaultUpdatedMarker
	cfg.List.CountMarker = rulelist.DefaultCountMarker
	cfg.Profile.Extensions = []string{".ini"}
	cfg.Profile.RuleLabel = profile.DefaultRuleLabel
	cfg.Profile.GroupLabel = profile.DefaultGroupLabel
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment (a .env file in the working directory is honored). An
// empty path falls back to DefaultPath when that file exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RULEKIT_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("RULEKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RULEKIT_GEOIP_DB"); v != "" {
		c.GeoIPDB = v
	}
	if v := os.Getenv("RULEKIT_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := os.Getenv("RULEKIT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RULEKIT_WORKERS=%q: %w", v, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the configuration for values the tool cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64, got %d", c.Workers)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if len(c.List.Extensions) == 0 {
		return fmt.Errorf("list.extensions must not be empty")
	}
	if len(c.Profile.Extensions) == 0 {
		return fmt.Errorf("profile.extensions must not be empty")
	}
	for _, ext := range append(append([]string{}, c.List.Extensions...), c.Profile.Extensions...) {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Profile.RuleLabel == "" || c.Profile.GroupLabel == "" {
		return fmt.Errorf("profile labels must not be empty")
	}
	if c.Profile.RuleLabel == c.Profile.GroupLabel {
		return fmt.Errorf("profile.rule_label and profile.group_label must differ")
	}
	return nil
}

// Header returns the rule-list header layout.
func (c *Config) Header() rulelist.Header {
	return rulelist.Header{
		Title:         c.List.Title,
		UpdatedMarker: c.List.UpdatedMarker,
		CountMarker:   c.List.CountMarker,
	}
}

// Labels returns the profile sentinel lines.
func (c *Config) Labels() profile.Labels {
	return profile.Labels{
		Rule:  c.Profile.RuleLabel,
		Group: c.Profile.GroupLabel,
	}
}
