// Package config loads circulate settings from $CIRCULATE_HOME/config.yaml,
// a .env file and CIRCULATE_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/report"
)

// Environment variables read by the configuration layer.
const (
	EnvHome             = "CIRCULATE_HOME"
	EnvLogLevel         = "CIRCULATE_LOG_LEVEL"
	EnvLogFormat        = "CIRCULATE_LOG_FORMAT"
	EnvLogFile          = "CIRCULATE_LOG_FILE"
	EnvOutputFormat     = "CIRCULATE_OUTPUT_FORMAT"
	EnvMatchConcurrency = "CIRCULATE_MATCH_CONCURRENCY"
	EnvDataset          = "CIRCULATE_DATASET"
)

const (
	configFileName = "config.yaml"
	dotEnvFileName = ".env"
)

// Config is the complete circulate configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Matching MatchingConfig `yaml:"matching"`
	Forecast ForecastConfig `yaml:"forecast"`
	Factors  FactorsConfig  `yaml:"factors"`
	Dataset  DatasetConfig  `yaml:"dataset"`

	configPath string
}

// OutputConfig controls rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// MatchingConfig controls batch work over many listings or companies.
type MatchingConfig struct {
	// Concurrency bounds parallel rankings and snapshots; zero means one
	// per CPU.
	Concurrency int `yaml:"concurrency"`
}

// ForecastConfig controls projections.
type ForecastConfig struct {
	StepsAhead      int `yaml:"steps_ahead"`
	ColdStartMonths int `yaml:"cold_start_months"`
}

// FactorsConfig pins the factor table.
type FactorsConfig struct {
	// MinVersion is a semver constraint the built-in table must satisfy,
	// such as "^2.0".
	MinVersion string `yaml:"min_version,omitempty"`
}

// DatasetConfig locates the default dataset file.
type DatasetConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return &Config{
		Output:   OutputConfig{DefaultFormat: string(report.FormatTable)},
		Logging:  LoggingConfig{Level: "info", Format: logging.FormatConsole},
		Forecast: ForecastConfig{StepsAhead: 3, ColdStartMonths: 12},
	}
}

// New returns the effective configuration: defaults, overlaid by the
// config file when present, then by the environment. Problems reading the
// file leave the defaults in place.
func New() *Config {
	cfg := Default()
	dir, err := GetConfigDir()
	if err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		if _, statErr := os.Stat(cfg.configPath); statErr == nil {
			_ = ShallowMergeYAML(cfg, cfg.configPath)
		}
	}
	_ = LoadDotEnv(dotEnvFileName)
	cfg.ApplyEnv(os.LookupEnv)
	return cfg
}

// Load reads the configuration file at path on top of the defaults and
// applies the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file that are not already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables. Malformed
// numbers are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := lookup(EnvOutputFormat); ok && v != "" {
		c.Output.DefaultFormat = v
	}
	if v, ok := lookup(EnvMatchConcurrency); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			c.Matching.Concurrency = n
		}
	}
	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.Dataset.Path = v
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Output.DefaultFormat); err != nil {
		return fmt.Errorf("output.default_format: %w", err)
	}
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.Matching.Concurrency < 0 {
		return fmt.Errorf("matching.concurrency must be >= 0, got %d", c.Matching.Concurrency)
	}
	if c.Forecast.StepsAhead < 1 {
		return fmt.Errorf("forecast.steps_ahead must be >= 1, got %d", c.Forecast.StepsAhead)
	}
	if c.Forecast.ColdStartMonths < 2 {
		return fmt.Errorf("forecast.cold_start_months must be >= 2, got %d", c.Forecast.ColdStartMonths)
	}
	if c.Factors.MinVersion != "" {
		if _, err := semver.NewConstraint(c.Factors.MinVersion); err != nil {
			return fmt.Errorf("factors.min_version: %w", err)
		}
	}
	return nil
}

// FactorTable returns the built-in factor table after checking it against
// factors.min_version.
func (c *Config) FactorTable() (factors.Table, error) {
	table := factors.Default()
	if c.Factors.MinVersion == "" {
		return table, nil
	}
	ok, err := table.Satisfies(c.Factors.MinVersion)
	if err != nil {
		return factors.Table{}, err
	}
	if !ok {
		return factors.Table{}, fmt.Errorf("%w: factor table %s does not satisfy %q",
			factors.ErrInvalidVersion, table.VersionString(), c.Factors.MinVersion)
	}
	return table, nil
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string { return c.configPath }

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) { c.configPath = path }

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no configuration path set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
