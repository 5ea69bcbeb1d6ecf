// Package config loads editor configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level studio configuration.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Snap    SnapConfig    `yaml:"snap"`
	History HistoryConfig `yaml:"history"`
	Images  ImagesConfig  `yaml:"images"`
	Log     LogConfig     `yaml:"log"`
}

// CanvasConfig is the initial canvas size in pixels.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SnapConfig controls the snapping engine.
type SnapConfig struct {
	Disabled bool    `yaml:"disabled"`
	Distance float64 `yaml:"distance"`
	Grid     bool    `yaml:"grid"`
	GridSize float64 `yaml:"grid_size"`
	NoObject bool    `yaml:"no_object_targets"`
	NoCanvas bool    `yaml:"no_canvas_targets"`
}

// HistoryConfig controls undo/redo retention.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// ImagesConfig controls image source resolution.
type ImagesConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	RateLimit    float64       `yaml:"rate_limit"` // remote fetches per second, 0 disables
	Burst        int           `yaml:"burst"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	BaseURL      string        `yaml:"base_url"`
	BaseDir      string        `yaml:"base_dir"`
	Concurrency  int           `yaml:"concurrency"`
}

// LogConfig selects the log level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{Images: ImagesConfig{RateLimit: 8}}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file. Unset fields take their
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Images: ImagesConfig{RateLimit: 8}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Canvas.Width == 0 {
		c.Canvas.Width = 1500
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = 2100
	}
	if c.Snap.Distance == 0 {
		c.Snap.Distance = 5
	}
	if c.Snap.GridSize == 0 {
		c.Snap.GridSize = 20
	}
	if c.History.Limit == 0 {
		c.History.Limit = 50
	}
	if c.Images.FetchTimeout == 0 {
		c.Images.FetchTimeout = 30 * time.Second
	}
	if c.Images.Burst == 0 {
		c.Images.Burst = 4
	}
	if c.Images.CacheTTL == 0 {
		c.Images.CacheTTL = 10 * time.Minute
	}
	if c.Images.Concurrency == 0 {
		c.Images.Concurrency = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects sizes, limits and durations that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		errs = append(errs, fmt.Errorf("canvas size %vx%v must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Snap.Distance < 0 {
		errs = append(errs, fmt.Errorf("snap distance %v must be positive", c.Snap.Distance))
	}
	if c.Snap.GridSize < 0 {
		errs = append(errs, fmt.Errorf("grid size %v must be positive", c.Snap.GridSize))
	}
	if c.History.Limit < 0 {
		errs = append(errs, fmt.Errorf("history limit %d must be positive", c.History.Limit))
	}
	if c.Images.FetchTimeout < 0 || c.Images.CacheTTL < 0 {
		errs = append(errs, errors.New("image durations must not be negative"))
	}
	if c.Images.RateLimit < 0 || c.Images.Burst < 0 || c.Images.Concurrency < 0 {
		errs = append(errs, errors.New("image rate, burst and concurrency must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", l.Level)
}
