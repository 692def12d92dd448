// Package config loads runtime settings from an optional config file and
// the environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/save"
)

// Config holds runtime settings. Catalog content is configured separately
// by ContentDir.
type Config struct {
	Seed       int64   `mapstructure:"seed" env:"ARPG_SEED"`
	SeedString string  `mapstructure:"seedString" env:"ARPG_SEED_STRING"`
	TickRate   int     `mapstructure:"tickRate" env:"ARPG_TICK_RATE"`
	MaxStep    float64 `mapstructure:"maxStep" env:"ARPG_MAX_STEP"`
	LogLevel   string  `mapstructure:"logLevel" env:"ARPG_LOG_LEVEL"`
	LogFormat  string  `mapstructure:"logFormat" env:"ARPG_LOG_FORMAT"`
	ContentDir string  `mapstructure:"contentDir" env:"ARPG_CONTENT_DIR"`
	SaveDir    string  `mapstructure:"saveDir" env:"ARPG_SAVE_DIR"`
	SaveFormat string  `mapstructure:"saveFormat" env:"ARPG_SAVE_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 0)
	v.SetDefault("seedString", "")
	v.SetDefault("tickRate", 60)
	v.SetDefault("maxStep", 0.05)
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")
	v.SetDefault("contentDir", "")
	v.SetDefault("saveDir", "~/.arpgcore/snapshots")
	v.SetDefault("saveFormat", "json")
}

// Load reads the config file at path (any format viper understands, picked
// by extension), then applies ARPG_* environment overrides. An empty path or
// a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.SaveDir = ExpandHome(cfg.SaveDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tickRate must be positive, got %d", c.TickRate))
	}
	if c.MaxStep <= 0 {
		errs = append(errs, fmt.Errorf("maxStep must be positive, got %g", c.MaxStep))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat))
	}
	if _, err := save.ParseFormat(c.SaveFormat); err != nil {
		errs = append(errs, fmt.Errorf("saveFormat: %w", err))
	}
	return errors.Join(errs...)
}

// ResolveSeed returns the effective seed. A seed string wins over the
// numeric seed.
func (c *Config) ResolveSeed() int64 {
	if c.SeedString != "" {
		return engine.SeedFromString(c.SeedString)
	}
	return c.Seed
}

// Dt is the fixed step length for one tick.
func (c *Config) Dt() float64 {
	return 1 / float64(c.TickRate)
}

// SnapshotFormat returns the parsed save format. Validate has already
// rejected unknown names.
func (c *Config) SnapshotFormat() save.Format {
	f, _ := save.ParseFormat(c.SaveFormat)
	return f
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
