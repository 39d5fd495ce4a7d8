package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Interval() != 2*time.Second {
		t.Errorf("Interval() = %v", cfg.Interval())
	}
	if cfg.TrimTimeout() != 30*time.Second || cfg.ProbeTimeout() != 3*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.TrimTimeout(), cfg.ProbeTimeout())
	}
	if cfg.DefragTimeout() != 0 {
		t.Errorf("DefragTimeout() = %v, want unbounded", cfg.DefragTimeout())
	}
	if cfg.Processes.Browser != "chrome" {
		t.Errorf("Browser = %q", cfg.Processes.Browser)
	}
	if !strings.HasSuffix(cfg.Storage.DBPath, "history.db") {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Monitor.Top != 10 {
		t.Errorf("Top = %d, want 10", cfg.Monitor.Top)
	}
}

func TestLoadConfig_MergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "monitor:\n  top: 25\ndisk:\n  trim_timeout: 45s\n  extra_temp_dirs: [/scratch]\nprocesses:\n  extra_critical: [backupd]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Monitor.Top != 25 {
		t.Errorf("Top = %d, want 25", cfg.Monitor.Top)
	}
	if cfg.TrimTimeout() != 45*time.Second {
		t.Errorf("TrimTimeout() = %v", cfg.TrimTimeout())
	}
	if cfg.Monitor.Interval != "2s" {
		t.Errorf("unset field lost its default: %q", cfg.Monitor.Interval)
	}
	if len(cfg.Disk.ExtraTempDirs) != 1 || cfg.Disk.ExtraTempDirs[0] != "/scratch" {
		t.Errorf("ExtraTempDirs = %v", cfg.Disk.ExtraTempDirs)
	}
	if len(cfg.Processes.ExtraCritical) != 1 || cfg.Processes.ExtraCritical[0] != "backupd" {
		t.Errorf("ExtraCritical = %v", cfg.Processes.ExtraCritical)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("monitor: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should fail on malformed YAML")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SYSOPT_TOP", "7")
	t.Setenv("SYSOPT_INTERVAL", "5")
	t.Setenv("SYSOPT_DB", "/tmp/x.db")
	t.Setenv("SYSOPT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Monitor.Top != 7 {
		t.Errorf("Top = %d, want 7", cfg.Monitor.Top)
	}
	if cfg.Interval() != 5*time.Second {
		t.Errorf("Interval() = %v, want 5s from bare seconds", cfg.Interval())
	}
	if cfg.Storage.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"top too small", func(c *Config) { c.Monitor.Top = 0 }, "monitor.top"},
		{"top too large", func(c *Config) { c.Monitor.Top = 51 }, "monitor.top"},
		{"empty db", func(c *Config) { c.Storage.DBPath = " " }, "db_path"},
		{"negative trim", func(c *Config) { c.Disk.TrimTimeout = "-1s" }, "disk.trim_timeout"},
		{"garbage detect timeout", func(c *Config) { c.Disk.ProbeTimeout = "soon" }, "disk.probe_timeout"},
		{"zero interval", func(c *Config) { c.Monitor.Interval = "0s" }, "monitor.interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q should mention %q", err, tt.errSub)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Monitor.Top = 33
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.Monitor.Top != 33 {
		t.Errorf("Top = %d, want 33", got.Monitor.Top)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 8)
	if err := Watch(ctx, path, func(c *Config, err error) {
		if err != nil {
			return
		}
		select {
		case got <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	if err := os.WriteFile(path, []byte("monitor:\n  top: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Monitor.Top == 4 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
