package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file looked up in the working directory.
const FileName = "setstate.yaml"

// Defaults applied by Resolve.
const (
	DefaultInterval    = time.Second
	DefaultTitleFormat = "%d"
)

// Config represents the optional setstate.yaml configuration.
type Config struct {
	Counter CounterConfig `yaml:"counter"`
	Log     LogConfig     `yaml:"log"`
}

// CounterConfig contains settings for the counter command.
type CounterConfig struct {
	Interval    string `yaml:"interval,omitempty"`
	Ticks       int    `yaml:"ticks,omitempty"`
	TitleFormat string `yaml:"title_format,omitempty"`
	StateFile   string `yaml:"state_file,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Interval    time.Duration
	Ticks       int
	TitleFormat string
	StateFile   string
	LogLevel    zapcore.Level
	Verbose     bool
}

// LoadOptional reads the file at path if present. A missing file yields an
// empty Config.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Resolve loads the file at path (if present) and resolves defaults.
func Resolve(path string) (*Resolved, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve applies defaults to c and validates the result.
func (c *Config) Resolve() (*Resolved, error) {
	interval := DefaultInterval
	if s := strings.TrimSpace(c.Counter.Interval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("counter.interval: %w", err)
		}
		interval = d
	}
	if interval <= 0 {
		return nil, fmt.Errorf("counter.interval must be positive (got %s)", interval)
	}

	if c.Counter.Ticks < 0 {
		return nil, fmt.Errorf("counter.ticks cannot be negative (got %d)", c.Counter.Ticks)
	}

	titleFormat := c.Counter.TitleFormat
	if titleFormat == "" {
		titleFormat = DefaultTitleFormat
	}
	if err := validateTitleFormat(titleFormat); err != nil {
		return nil, err
	}

	level := zapcore.InfoLevel
	if s := strings.TrimSpace(c.Log.Level); s != "" {
		l, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		level = l
	}

	return &Resolved{
		Interval:    interval,
		Ticks:       c.Counter.Ticks,
		TitleFormat: titleFormat,
		StateFile:   strings.TrimSpace(c.Counter.StateFile),
		LogLevel:    level,
		Verbose:     c.Log.Verbose,
	}, nil
}

func validateTitleFormat(format string) error {
	if strings.Count(format, "%d") != 1 {
		return fmt.Errorf("counter.title_format must contain exactly one %%d (got %q)", format)
	}
	if strings.Count(format, "%")-strings.Count(format, "%%")*2 != 1 {
		return fmt.Errorf("counter.title_format contains unsupported verbs (got %q)", format)
	}
	return nil
}
