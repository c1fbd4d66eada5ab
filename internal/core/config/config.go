// Package config handles configuration loading and validation for subassist.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/subassist/internal/core/charset"
	"github.com/hay-kot/subassist/internal/core/rules"
)

// Extensions written by the convert rule.
const (
	LegacyConvertExtension  = ".str"
	CorrectConvertExtension = ".srt"
)

// Config holds the application configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Input    InputConfig    `yaml:"input"`
	Convert  ConvertConfig  `yaml:"convert"`
	Rules    RulesConfig    `yaml:"rules"`
	Journal  JournalConfig  `yaml:"journal"`
	Database DatabaseConfig `yaml:"database"`
	Theme    string         `yaml:"theme"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// OutputConfig controls how corrected files are written.
type OutputConfig struct {
	Encoding    string `yaml:"encoding"`
	AtomicWrite *bool  `yaml:"atomic_write"` // nil = true
	Verify      bool   `yaml:"verify"`
}

// InputConfig controls how files are read.
type InputConfig struct {
	DetectCharset *bool `yaml:"detect_charset"` // nil = true
}

// ConvertConfig tunes the WebVTT to SubRip conversion.
type ConvertConfig struct {
	HeaderLines *int `yaml:"header_lines"` // nil = rules default
	// CorrectExtension writes converted files as .srt instead of the legacy .str.
	CorrectExtension bool `yaml:"correct_extension"`
}

// RulesConfig tunes individual rules.
type RulesConfig struct {
	QuickGapMin time.Duration `yaml:"quick_gap_min"`
	QuickGapMax time.Duration `yaml:"quick_gap_max"`
	MaxPasses   int           `yaml:"max_passes"`
}

// JournalConfig controls the edits journal.
type JournalConfig struct {
	Enabled *bool `yaml:"enabled"` // nil = true
}

// DatabaseConfig holds connection pool settings for the journal database.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	rs := rules.DefaultSettings()
	return Config{
		Output: OutputConfig{
			Encoding: charset.UTF8,
		},
		Rules: RulesConfig{
			QuickGapMin: rs.QuickGapMin,
			QuickGapMax: rs.QuickGapMax,
			MaxPasses:   16,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Theme: "tokyo-night",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Output.Encoding == "" {
		c.Output.Encoding = defaults.Output.Encoding
	}
	if c.Rules.QuickGapMin == 0 {
		c.Rules.QuickGapMin = defaults.Rules.QuickGapMin
	}
	if c.Rules.QuickGapMax == 0 {
		c.Rules.QuickGapMax = defaults.Rules.QuickGapMax
	}
	if c.Rules.MaxPasses == 0 {
		c.Rules.MaxPasses = defaults.Rules.MaxPasses
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// AtomicWrite reports whether output goes through a temp file and rename.
func (c *Config) AtomicWrite() bool { return boolOr(c.Output.AtomicWrite, true) }

// DetectCharset reports whether non UTF-8 input is sniffed.
func (c *Config) DetectCharset() bool { return boolOr(c.Input.DetectCharset, true) }

// HeaderLines is the number of physical lines the convert rule strips before
// parsing. An explicit 0 is honored.
func (c *Config) HeaderLines() int {
	if c.Convert.HeaderLines == nil {
		return rules.DefaultSettings().HeaderLines
	}
	return *c.Convert.HeaderLines
}

// JournalEnabled reports whether approved edits are recorded.
func (c *Config) JournalEnabled() bool { return boolOr(c.Journal.Enabled, true) }

// RuleSettings converts the rule options into catalog settings.
func (c *Config) RuleSettings() rules.Settings {
	return rules.Settings{
		QuickGapMin: c.Rules.QuickGapMin,
		QuickGapMax: c.Rules.QuickGapMax,
		HeaderLines: c.HeaderLines(),
	}
}

// ConvertExtension is the extension given to converted files.
func (c *Config) ConvertExtension() string {
	if c.Convert.CorrectExtension {
		return CorrectConvertExtension
	}
	return LegacyConvertExtension
}

// DatabasePath returns the path of the journal database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "subassist.db")
}
