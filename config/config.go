// Package config holds the process-wide configuration snapshot shared by
// every integration. It is loaded once before discovery starts and never
// mutated afterwards, so integrations may keep the pointer without locking.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

const defaultScanTimeoutMs = 5000

type Config struct {
	Govee GoveeConfig `toml:"govee"`
}

type GoveeConfig struct {
	Enabled bool `toml:"enabled"`
	// Addresses is the static device list, each entry "ip" or "ip:port".
	Addresses []string `toml:"addresses"`
	// Scan additionally probes the LAN multicast group for devices not in
	// Addresses. Off by default.
	Scan bool `toml:"scan"`
	// ScanTimeout bounds every socket receive during discovery, in
	// milliseconds.
	ScanTimeout int `toml:"scan_timeout"`
}

// Timeout returns ScanTimeout as a duration, falling back to the default
// when the field is unset or nonsense.
func (g GoveeConfig) Timeout() time.Duration {
	if g.ScanTimeout <= 0 {
		return defaultScanTimeoutMs * time.Millisecond
	}
	return time.Duration(g.ScanTimeout) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Govee: GoveeConfig{
			ScanTimeout: defaultScanTimeoutMs,
		},
	}
}

// Load reads a TOML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the config from the platform config directory. A missing
// file is not an error; it just means everything is disabled.
func LoadDefault() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// Validate reports every malformed field at once rather than stopping at
// the first.
func (c *Config) Validate() error {
	var errs error
	for _, addr := range c.Govee.Addresses {
		if err := checkAddress(addr); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("govee address %q: %w", addr, err))
		}
	}
	return errs
}

func checkAddress(addr string) error {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	if net.ParseIP(host) == nil {
		return errors.New("not an IP address")
	}
	return nil
}

func configPath() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "unilight", "config.toml"), nil
}
