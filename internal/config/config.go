// Package config loads orrery settings from defaults, an optional YAML
// file and ORRERY_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/logging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all runtime settings.
type Config struct {
	LogLevel    string `yaml:"log_level" env:"ORRERY_LOG_LEVEL"`
	LogFile     string `yaml:"log_file" env:"ORRERY_LOG_FILE"`
	FPS         int    `yaml:"fps" env:"ORRERY_FPS"`
	MetricsAddr string `yaml:"metrics_addr" env:"ORRERY_METRICS_ADDR"`

	TextureSize   int    `yaml:"texture_size" env:"ORRERY_TEXTURE_SIZE"`
	OrbitSegments int    `yaml:"orbit_segments" env:"ORRERY_ORBIT_SEGMENTS"`
	StarCount     int    `yaml:"star_count" env:"ORRERY_STAR_COUNT"`
	Seed          uint64 `yaml:"seed" env:"ORRERY_SEED"` // 0 picks a random seed

	Asteroid astro.Elements `yaml:"asteroid"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:      "info",
		FPS:           30,
		TextureSize:   512,
		OrbitSegments: astro.DefaultOrbitSegments,
		StarCount:     5000,
		Asteroid:      astro.Haberle(),
	}
}

// Load builds the effective config. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field and names the first bad one.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps must be 1..240, got %d", ErrInvalidConfig, c.FPS)
	case c.TextureSize < 1 || c.TextureSize > 4096:
		return fmt.Errorf("%w: texture_size must be 1..4096, got %d", ErrInvalidConfig, c.TextureSize)
	case c.OrbitSegments < 1:
		return fmt.Errorf("%w: orbit_segments must be positive, got %d", ErrInvalidConfig, c.OrbitSegments)
	case c.StarCount < 0:
		return fmt.Errorf("%w: star_count must not be negative, got %d", ErrInvalidConfig, c.StarCount)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if err := c.Asteroid.Validate(); err != nil {
		return fmt.Errorf("%w: asteroid: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Interval returns the frame interval for FPS.
func (c Config) Interval() time.Duration {
	if c.FPS < 1 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FPS)
}

// Level returns the parsed log level.
func (c Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// WriteYAML encodes the config as YAML.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
