// Package config loads batdump settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bat/pkg/container"
	"github.com/dd0wney/cluso-bat/pkg/logging"
)

// Config holds the settings shared by the archive reader and writer.
type Config struct {
	LogLevel         string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	MaxPayloadBytes  uint64 `yaml:"max_payload_bytes" validate:"min=64"`
	MaxHeaderBytes   int    `yaml:"max_header_bytes" validate:"min=16,max=65536"`
	CompressContents bool   `yaml:"compress_contents"`
	Workers          int    `yaml:"workers" validate:"min=1,max=64"`
	MetricsAddr      string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:        "info",
		MaxPayloadBytes: container.DefaultMaxPayload,
		MaxHeaderBytes:  container.DefaultMaxHeader,
		Workers:         4,
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BAT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BAT_MAX_PAYLOAD_BYTES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BAT_MAX_PAYLOAD_BYTES: %w", err)
		}
		c.MaxPayloadBytes = n
	}
	return nil
}

// Validate checks the settings against their constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// ReaderOptions returns the container reader limits.
func (c Config) ReaderOptions() []container.ReaderOption {
	return []container.ReaderOption{
		container.WithMaxPayload(c.MaxPayloadBytes),
		container.WithMaxHeader(c.MaxHeaderBytes),
	}
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		switch e.Tag() {
		case "min":
			return fmt.Errorf("config %s: must be at least %s", e.Field(), e.Param())
		case "max":
			return fmt.Errorf("config %s: must not exceed %s", e.Field(), e.Param())
		case "oneof":
			return fmt.Errorf("config %s: %q is not one of %s", e.Field(), e.Value(), e.Param())
		default:
			return fmt.Errorf("config %s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
