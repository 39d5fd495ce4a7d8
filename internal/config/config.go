// Package config loads sysopt settings from YAML, .env and SYSOPT_*
// environment variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MinTop = 1
	MaxTop = 50
)

// Config carries runtime options for sysopt.
type Config struct {
	Monitor   MonitorConfig `yaml:"monitor"`
	Storage   StorageConfig `yaml:"storage"`
	Disk      DiskConfig    `yaml:"disk"`
	Processes ProcessConfig `yaml:"processes"`
	Log       LogConfig     `yaml:"log"`
}

type MonitorConfig struct {
	// Interval is a duration string between samples, e.g. "2s".
	Interval string `yaml:"interval"`
	// Top is the number of processes shown in ranked lists.
	Top int `yaml:"top"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// DiskConfig holds disk maintenance limits. A defrag timeout of "0"
// means the pass runs until it finishes.
type DiskConfig struct {
	ProbeTimeout  string   `yaml:"probe_timeout"`
	TrimTimeout   string   `yaml:"trim_timeout"`
	DefragTimeout string   `yaml:"defrag_timeout"`
	ExtraTempDirs []string `yaml:"extra_temp_dirs"`
}

// ProcessConfig holds process handling options. ExtraCritical only adds
// to the built-in protected set.
type ProcessConfig struct {
	ExtraCritical []string `yaml:"extra_critical"`
	Browser       string   `yaml:"browser"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval: "2s",
			Top:      10,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(baseDir(), "history.db"),
		},
		Disk: DiskConfig{
			ProbeTimeout:  "3s",
			TrimTimeout:   "30s",
			DefragTimeout: "0",
			ExtraTempDirs: []string{},
		},
		Processes: ProcessConfig{
			ExtraCritical: []string{},
			Browser:       "chrome",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath is ~/.sysopt/config.yaml.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sysopt"
	}
	return filepath.Join(home, ".sysopt")
}

// LoadConfig reads path over the defaults, then applies .env and
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Monitor.Interval = getenv("SYSOPT_INTERVAL", c.Monitor.Interval)
	c.Monitor.Top = envInt("SYSOPT_TOP", c.Monitor.Top)
	c.Storage.DBPath = getenv("SYSOPT_DB", c.Storage.DBPath)
	c.Disk.ProbeTimeout = getenv("SYSOPT_PROBE_TIMEOUT", c.Disk.ProbeTimeout)
	c.Disk.TrimTimeout = getenv("SYSOPT_TRIM_TIMEOUT", c.Disk.TrimTimeout)
	c.Log.Level = getenv("SYSOPT_LOG_LEVEL", c.Log.Level)
}

// Validate checks ranges and that every duration parses.
func (c *Config) Validate() error {
	if c.Monitor.Top < MinTop || c.Monitor.Top > MaxTop {
		return fmt.Errorf("monitor.top must be between %d and %d, got %d", MinTop, MaxTop, c.Monitor.Top)
	}
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	iv, err := parseDuration(c.Monitor.Interval)
	if err != nil {
		return fmt.Errorf("monitor.interval: %w", err)
	}
	if iv <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %q", c.Monitor.Interval)
	}
	for name, v := range map[string]string{
		"disk.probe_timeout":  c.Disk.ProbeTimeout,
		"disk.trim_timeout":   c.Disk.TrimTimeout,
		"disk.defrag_timeout": c.Disk.DefragTimeout,
	} {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %q", name, v)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Interval() time.Duration { return durationOr(c.Monitor.Interval, 2*time.Second) }
func (c *Config) ProbeTimeout() time.Duration { return durationOr(c.Disk.ProbeTimeout, 3*time.Second) }
func (c *Config) TrimTimeout() time.Duration { return durationOr(c.Disk.TrimTimeout, 30*time.Second) }
func (c *Config) DefragTimeout() time.Duration { return durationOr(c.Disk.DefragTimeout, 0) }

// LogLevel falls back to warn for unrecognised names.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// parseDuration accepts Go duration strings and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := parseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
