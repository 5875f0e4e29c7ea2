package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/termprobe/config.toml
//  2. ~/.config/termprobe/config.toml
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file is not an error.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader reads configuration from an io.Reader. When probe.preset
// names a preset, its timings fill every probe field the file leaves out.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}

	preset := ProbePreset(cfg.Probe.Preset)
	if !md.IsDefined("probe", "timeout") {
		cfg.Probe.Timeout = preset.Timeout
	}
	if !md.IsDefined("probe", "warn_after") {
		cfg.Probe.WarnAfter = preset.WarnAfter
	}
	if !md.IsDefined("probe", "drain_timeout") {
		cfg.Probe.DrainTimeout = preset.DrainTimeout
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Probe:    defaultPreset(),
		Image: ImageConfig{
			Adapter: "auto",
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
// Malformed durations are ignored so a stray variable never blocks startup.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TERMPROBE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TERMPROBE_ADAPTER"); v != "" {
		cfg.Image.Adapter = v
	}
	if v := os.Getenv("TERMPROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Probe.Timeout = Duration{d}
		}
	}
	if v := os.Getenv("TERMPROBE_WARN_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Probe.WarnAfter = Duration{d}
		}
	}
	if os.Getenv("TERMPROBE_DISABLE") != "" {
		cfg.Probe.Enabled = false
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "termprobe", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "termprobe", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
