package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysoptimizer/internal/config"
	"github.com/Dicklesworthstone/sysoptimizer/internal/ui"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live terminal dashboard",
	Long: `Show a live dashboard with health, CPU, memory, system disk, top
processes, drives and recommendations. Press q to quit, r to refresh.

Edits to the config file's monitor section are picked up while running.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Refresh interval (default from config)")

	RootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Console logs would draw over the alt screen; --log-file still works.
	e, err := buildEngine(false, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	settings := ui.Settings{Interval: e.cfg.Interval(), Top: e.cfg.Monitor.Top}
	if monitorInterval > 0 {
		settings.Interval = monitorInterval
	}
	prog := ui.NewProgram(ui.New(e.diag, e.disk, settings))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = config.Watch(ctx, e.cfgFile, func(cfg *config.Config, err error) {
		if err != nil {
			e.logger.Warn("config reload failed", slog.String("path", e.cfgFile), slog.Any("error", err))
			return
		}
		next := ui.SettingsMsg{Interval: cfg.Interval(), Top: cfg.Monitor.Top}
		if monitorInterval > 0 {
			next.Interval = monitorInterval
		}
		prog.Send(next)
	})
	if err != nil {
		e.logger.Debug("config watch unavailable", slog.String("path", e.cfgFile), slog.Any("error", err))
	}

	_, err = prog.Run()
	return err
}
