package app

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
	logFile  string
	dbPath   string

	// RootCmd is the root command for sysopt
	RootCmd = &cobra.Command{
		Use:   "sysopt",
		Short: "Host health snapshots, process cleanup and disk maintenance",
		Long: `sysopt samples CPU, memory and system-disk usage, scores overall health,
and offers the cleanup actions that go with it.

Diagnostics:
  • Health snapshot with recommendations
  • Top processes by CPU and memory
  • Startup applications
  • Live terminal monitor

Maintenance:
  • Close user applications (never protected system processes)
  • Purge temporary files per drive
  • TRIM solid-state drives, defragment hard drives
  • History of every snapshot and disk operation

Examples:
  # Current health
  sysopt snapshot

  # Close heavy applications one by one
  sysopt optimize

  # Check drive media and TRIM the SSD
  sysopt drivetype /
  sysopt trim /

  # Watch the machine live
  sysopt monitor`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: ~/.sysopt/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default: ~/.sysopt/history.db)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
