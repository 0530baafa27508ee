package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "trayping/internal/errors"
)

// Config represents the tunables of the tray application. The compiled
// defaults are what ships; a yaml file may override them for development.
type Config struct {
	Probe          Probe     `yaml:"probe"`
	Heartbeat      Heartbeat `yaml:"heartbeat"`
	IconsDir       string    `yaml:"icons_dir"`
	LockName       string    `yaml:"lock_name"`
	Tooltip        string    `yaml:"tooltip"`
	NotifyOnChange bool      `yaml:"notify_on_change"`
	InhibitIdle    bool      `yaml:"inhibit_idle"`
	Log            Log       `yaml:"log"`
}

// Probe configures the reachability probe.
type Probe struct {
	Target     string `yaml:"target"`
	Method     string `yaml:"method"`
	IntervalMs int    `yaml:"interval_ms"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// Heartbeat configures the audible keep-alive.
type Heartbeat struct {
	IntervalMinutes int     `yaml:"interval_minutes"`
	Sound           string  `yaml:"sound"`
	Volume          float64 `yaml:"volume"`
}

// Log configures the rotating log file. An empty File means the
// platform default chosen by the logger.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Probe methods.
const (
	MethodTCP  = "tcp"
	MethodDNS  = "dns"
	MethodICMP = "icmp"
)

// DefaultConfig returns the compiled constants.
func DefaultConfig() Config {
	return Config{
		Probe: Probe{
			Target:     "8.8.8.8",
			Method:     MethodTCP,
			IntervalMs: 1000,
			TimeoutMs:  800,
		},
		Heartbeat: Heartbeat{
			IntervalMinutes: 10,
			Sound:           filepath.Join("sounds", "arrow.wav"),
			Volume:          0.01,
		},
		IconsDir:    "icons",
		LockName:    "TrayPingMutex",
		Tooltip:     "Tray ping",
		InhibitIdle: true,
		Log: Log{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// ProbeInterval returns the probe tick period.
func (c Config) ProbeInterval() time.Duration {
	return time.Duration(c.Probe.IntervalMs) * time.Millisecond
}

// ProbeTimeout returns the bound on a single probe.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutMs) * time.Millisecond
}

// HeartbeatInterval returns the heartbeat tick period.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.IntervalMinutes) * time.Minute
}

// Load reads configuration from yaml file. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrConfigInvalid, "ConfigParse", err.Error())
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	def := DefaultConfig()

	c.Probe.Target = strings.TrimSpace(c.Probe.Target)
	if c.Probe.Target == "" {
		c.Probe.Target = def.Probe.Target
	}
	c.Probe.Method = strings.ToLower(strings.TrimSpace(c.Probe.Method))
	switch c.Probe.Method {
	case "":
		c.Probe.Method = def.Probe.Method
	case MethodTCP, MethodDNS, MethodICMP:
	default:
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "ConfigProbeMethod",
			fmt.Sprintf("unknown probe method %q", c.Probe.Method))
	}
	if c.Probe.IntervalMs <= 0 {
		c.Probe.IntervalMs = def.Probe.IntervalMs
	}
	if c.Probe.TimeoutMs <= 0 {
		c.Probe.TimeoutMs = def.Probe.TimeoutMs
	}
	if c.Probe.TimeoutMs >= c.Probe.IntervalMs {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "ConfigProbeTimeout",
			fmt.Sprintf("probe timeout %dms must be shorter than interval %dms", c.Probe.TimeoutMs, c.Probe.IntervalMs))
	}

	if c.Heartbeat.IntervalMinutes <= 0 {
		c.Heartbeat.IntervalMinutes = def.Heartbeat.IntervalMinutes
	}
	if c.Heartbeat.Sound == "" {
		c.Heartbeat.Sound = def.Heartbeat.Sound
	}
	if c.Heartbeat.Volume <= 0 || c.Heartbeat.Volume > 1 {
		c.Heartbeat.Volume = def.Heartbeat.Volume
	}

	if c.IconsDir == "" {
		c.IconsDir = def.IconsDir
	}
	if c.LockName == "" {
		c.LockName = def.LockName
	}
	if c.Tooltip == "" {
		c.Tooltip = def.Tooltip
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = def.Log.MaxAgeDays
	}
	return nil
}
