// Package config loads bigby application settings from TOML or YAML files
// and builds the zap logger they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable commands consult for a config path.
const EnvPath = "BIGBY_CONFIG"

var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type Config struct {
	App     AppConfig     `toml:"app" yaml:"app"`
	Ticker  TickerConfig  `toml:"ticker" yaml:"ticker"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	DebugUI DebugUIConfig `toml:"debug_ui" yaml:"debug_ui"`
	Script  ScriptConfig  `toml:"script" yaml:"script"`
}

type AppConfig struct {
	Name string `toml:"name" yaml:"name"`
	// StartupConcurrency bounds how many load or start callbacks run at once;
	// 0 means unbounded.
	StartupConcurrency int `toml:"startup_concurrency" yaml:"startup_concurrency"`
	// StartupTimeout cancels the startup context when exceeded; 0 disables it.
	StartupTimeout time.Duration `toml:"startup_timeout" yaml:"startup_timeout"`
}

type TickerConfig struct {
	FixedStep time.Duration `toml:"fixed_step" yaml:"fixed_step"`
	MaxSteps  int           `toml:"max_steps" yaml:"max_steps"` // fixed updates per frame before the backlog is dropped
	Interval  time.Duration `toml:"interval" yaml:"interval"`   // headless frame interval
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type DebugUIConfig struct {
	Enabled       bool `toml:"enabled" yaml:"enabled"`
	HistoryFrames int  `toml:"history_frames" yaml:"history_frames"`
}

type ScriptConfig struct {
	Paths []string `toml:"paths" yaml:"paths"`
}

// Load reads the file at path over the defaults. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads the file named by $BIGBY_CONFIG, or returns the defaults when
// the variable is unset.
func LoadEnv() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:               "bigby",
			StartupConcurrency: 0,
		},
		Ticker: TickerConfig{
			FixedStep: time.Second / 60,
			MaxSteps:  5,
			Interval:  time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		DebugUI: DebugUIConfig{
			Enabled:       false,
			HistoryFrames: 120,
		},
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch {
	case c.App.StartupConcurrency < 0:
		return fmt.Errorf("app.startup_concurrency must not be negative, got %d", c.App.StartupConcurrency)
	case c.App.StartupTimeout < 0:
		return fmt.Errorf("app.startup_timeout must not be negative, got %s", c.App.StartupTimeout)
	case c.Ticker.FixedStep <= 0:
		return fmt.Errorf("ticker.fixed_step must be positive, got %s", c.Ticker.FixedStep)
	case c.Ticker.MaxSteps < 1:
		return fmt.Errorf("ticker.max_steps must be at least 1, got %d", c.Ticker.MaxSteps)
	case c.Ticker.Interval <= 0:
		return fmt.Errorf("ticker.interval must be positive, got %s", c.Ticker.Interval)
	case c.DebugUI.HistoryFrames < 1:
		return fmt.Errorf("debug_ui.history_frames must be at least 1, got %d", c.DebugUI.HistoryFrames)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
