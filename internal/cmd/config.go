package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the config path relative to the user config directory.
const ConfigFile = "annexctl/config.toml"

// Config is the optional annexctl configuration file.
type Config struct {
	GitPath          string            `toml:"git_path"`
	LogLevel         string            `toml:"log_level"`
	CloseTimeout     string            `toml:"close_timeout"`
	SkipVersionCheck bool              `toml:"skip_version_check"`
	Env              map[string]string `toml:"env"`
}

// DefaultConfigPath returns the config file under the user config directory,
// $XDG_CONFIG_HOME on Linux.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, ConfigFile)
}

// LoadConfig reads and validates the config file at path.
// A missing file yields an empty config unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that are parsed later.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	return nil
}

// Timeout returns the close timeout, zero when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CloseTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.CloseTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid close_timeout %q: %w", c.CloseTimeout, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("invalid close_timeout %q: must not be negative", c.CloseTimeout)
	}

	return d, nil
}

// ParseLevel parses a log level name such as "debug" or "warn".
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}
