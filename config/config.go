// Package config holds the runtime settings shared by the CLI and the
// dashboard server.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the full runtime configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Render    RenderConfig    `yaml:"render"`
	Log       LogConfig       `yaml:"log"`
	Animation AnimationConfig `yaml:"animation"`
	// Presets optionally replaces the embedded scenarios with a YAML file
	Presets string `yaml:"presets"`
}

// ServerConfig configures the HTTP dashboard
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CacheSize    int           `yaml:"cache_size"`
	MaxSessions  int           `yaml:"max_sessions"`
}

// RenderConfig configures chart output
type RenderConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background"`
	Accent     string  `yaml:"accent"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnimationConfig configures the descent animation and trial batches
type AnimationConfig struct {
	Interval time.Duration `yaml:"interval"`
	// BatchInterval spaces the trials of a bandit batch
	BatchInterval time.Duration `yaml:"batch_interval"`
	BatchSize     int           `yaml:"batch_size"`
	MaxSteps      int           `yaml:"max_steps"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			CacheSize:    256,
			MaxSessions:  1024,
		},
		Render: RenderConfig{
			Width:      600,
			Height:     600,
			Background: "#050505",
			Accent:     "#4ade80",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Animation: AnimationConfig{
			Interval:      100 * time.Millisecond,
			BatchInterval: 10 * time.Millisecond,
			BatchSize:     30,
			MaxSteps:      500,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field for a usable value
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Server.Addr != "", "server.addr is empty")
	check(c.Server.ReadTimeout >= 0, "server.read_timeout %s is negative", c.Server.ReadTimeout)
	check(c.Server.WriteTimeout >= 0, "server.write_timeout %s is negative", c.Server.WriteTimeout)
	check(c.Server.CacheSize > 0, "server.cache_size %d must be positive", c.Server.CacheSize)
	check(c.Server.MaxSessions > 0, "server.max_sessions %d must be positive", c.Server.MaxSessions)
	check(c.Render.Width > 0 && c.Render.Height > 0, "render size %gx%g must be positive", c.Render.Width, c.Render.Height)
	_, levelErr := ParseLevel(c.Log.Level)
	check(levelErr == nil, "log.level %q is not one of debug, info, warn, error", c.Log.Level)
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format %q is not text or json", c.Log.Format)
	check(c.Animation.Interval > 0, "animation.interval %s must be positive", c.Animation.Interval)
	check(c.Animation.BatchInterval > 0, "animation.batch_interval %s must be positive", c.Animation.BatchInterval)
	check(c.Animation.BatchSize > 0, "animation.batch_size %d must be positive", c.Animation.BatchSize)
	check(c.Animation.MaxSteps > 0, "animation.max_steps %d must be positive", c.Animation.MaxSteps)

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}

// NewLogger builds the process logger from the log settings
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
