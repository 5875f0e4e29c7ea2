// Package config provides TOML-based configuration for termprobe.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/tinyland/lab/termprobe/pkg/terminal"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string      `toml:"log_level"`
	Probe    ProbeConfig `toml:"probe"`
	Image    ImageConfig `toml:"image"`
}

// ProbeConfig tunes the terminal capability probe.
type ProbeConfig struct {
	Enabled      bool     `toml:"enabled"`       // false skips probing and reports an unknown terminal
	Preset       string   `toml:"preset"`        // "default", "local" or "remote"
	Timeout      Duration `toml:"timeout"`       // deadline for the probe reply
	WarnAfter    Duration `toml:"warn_after"`    // delay before the "terminal is not answering" notice
	DrainTimeout Duration `toml:"drain_timeout"` // deadline for the tmux drain
	HelpURL      string   `toml:"help_url"`      // link shown in the timeout notice
}

// ImageConfig controls adapter selection for downstream renderers.
type ImageConfig struct {
	Adapter string `toml:"adapter"` // "auto" or an adapter name (kgp, iip, sixel, halfblocks, none)
}

// Timeouts converts the probe settings to terminal.Timeouts.
func (p ProbeConfig) Timeouts() terminal.Timeouts {
	return terminal.Timeouts{
		DA1:       p.Timeout.Duration,
		WarnAfter: p.WarnAfter.Duration,
		DSR:       p.DrainTimeout.Duration,
	}
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports configuration values that would make the probe
// misbehave.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.Probe.Timeout.Duration <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	if c.Probe.WarnAfter.Duration >= c.Probe.Timeout.Duration {
		return fmt.Errorf("probe.warn_after (%s) must be shorter than probe.timeout (%s)",
			c.Probe.WarnAfter.Duration, c.Probe.Timeout.Duration)
	}
	if c.Image.Adapter != "" && !strings.EqualFold(c.Image.Adapter, "auto") {
		if _, ok := terminal.ParseAdapter(c.Image.Adapter); !ok {
			return fmt.Errorf("image.adapter: unknown adapter %q", c.Image.Adapter)
		}
	}
	return nil
}
