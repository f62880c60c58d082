// Package config provides configuration management for the gantry CI
// harness. It handles loading, validating and saving the harness settings,
// the lint rule table and the publish target. The configuration is YAML,
// loaded once per invocation and treated as read-only afterwards.
package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gantryci/gantry/pkg/dist"
	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/fsutil"
	"github.com/gantryci/gantry/pkg/lint"
)

// Config is the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`

	// Lint gate configuration
	Lint lint.RuleSet `yaml:"lint"`

	// Release publisher configuration
	Publish PublishConfig `yaml:"publish"`
}

// Settings represents general harness settings.
type Settings struct {
	// WorkflowsDir holds the workflow definitions evaluated by `gantry run`.
	WorkflowsDir string `yaml:"workflows_dir,omitempty"`

	// RulesDir holds scripted lint rules (*.tengo).
	RulesDir string `yaml:"rules_dir,omitempty"`

	// MaxWorkers bounds the lint worker pool. Zero means one per CPU.
	MaxWorkers int `yaml:"max_workers"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // json, text
	LogLevel     string `yaml:"log_level"`     // error, warn, info, debug
}

// PublishConfig configures the release publisher.
type PublishConfig struct {
	// IndexURL is the package index upload endpoint.
	IndexURL string `yaml:"index_url"`

	// CredentialEnv names the environment variable holding the index
	// credential. The credential itself never lives in this file.
	CredentialEnv string `yaml:"credential_env,omitempty"`

	// SourceDir is the tree to package. OutputDir receives the built pair.
	SourceDir string `yaml:"source_dir,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`

	// Exclude lists top-level entries left out of the distributions.
	Exclude []string `yaml:"exclude,omitempty"`

	// Metadata describes the release. Version is usually overridden from
	// the release tag at run time.
	Metadata dist.Metadata `yaml:"metadata"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for index uploads.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultWorkflowsDir is where workflow definitions live relative to
	// the checkout.
	DefaultWorkflowsDir = ".gantry/workflows"

	// DefaultRulesDir is where scripted rules live relative to the checkout.
	DefaultRulesDir = ".gantry/rules"

	// DefaultOutputDir receives built distributions.
	DefaultOutputDir = "dist"

	// YAMLIndent is the number of spaces used for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Settings: Settings{
			WorkflowsDir: DefaultWorkflowsDir,
			RulesDir:     DefaultRulesDir,
			MaxWorkers:   runtime.NumCPU(),
			HTTPTimeout:  DefaultHTTPTimeout,
			OutputFormat: "text",
			LogLevel:     "info",
		},
		Publish: PublishConfig{
			SourceDir: ".",
			OutputDir: DefaultOutputDir,
		},
	}
	cfg.Lint.ApplyDefaults()
	return cfg
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration; a malformed one is a configuration error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, atomically via a temp file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := fsutil.CreateFilePerm(tempPath, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	return os.Rename(tempPath, absPath)
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.WorkflowsDir == "" {
		c.Settings.WorkflowsDir = defaults.Settings.WorkflowsDir
	}
	if c.Settings.RulesDir == "" {
		c.Settings.RulesDir = defaults.Settings.RulesDir
	}
	if c.Settings.MaxWorkers <= 0 {
		c.Settings.MaxWorkers = defaults.Settings.MaxWorkers
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Publish.SourceDir == "" {
		c.Publish.SourceDir = defaults.Publish.SourceDir
	}
	if c.Publish.OutputDir == "" {
		c.Publish.OutputDir = defaults.Publish.OutputDir
	}
	c.Lint.ApplyDefaults()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Settings.HTTPTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "http_timeout cannot be negative")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Settings.OutputFormat] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid output format %q", c.Settings.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Settings.LogLevel)] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid log level %q", c.Settings.LogLevel)
	}
	if err := c.Lint.Validate(); err != nil {
		return err
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
