package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/output"
)

var (
	snapshotSave  bool
	snapshotJSON  bool
	topCount      int
	memoryCount   int
	exportFormat  string
	exportOut     string
	exportHistory bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show current host health",
	Long: `Sample CPU, memory and system-disk free space, score overall health
from 0 to 100 and list recommendations.

Metrics the OS will not report show as N/A and do not lower the score.`,
	Example: `  sysopt snapshot
  sysopt snapshot --save
  sysopt snapshot --json`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the busiest processes",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Show memory usage, top consumers and the browser footprint",
	Args:  cobra.NoArgs,
	RunE:  runMemory,
}

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "List applications launched at login",
	Args:  cobra.NoArgs,
	RunE:  runStartup,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export diagnostics as JSON or snapshots as CSV",
	Long: `Export the current diagnostics (snapshot, recommendations, top processes
and startup applications) as JSON, or the current snapshot as CSV.
With --history the CSV holds every stored snapshot instead.`,
	Example: `  sysopt export --format json --out report.json
  sysopt export --format csv
  sysopt export --format csv --history > history.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotSave, "save", false, "Append the snapshot to history")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "Print JSON instead of a table")
	topCmd.Flags().IntVarP(&topCount, "count", "n", 10, "Number of processes (1-50)")
	memoryCmd.Flags().IntVarP(&memoryCount, "count", "n", 10, "Processes per list (1-50)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json|csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportHistory, "history", false, "CSV of all stored snapshots")

	RootCmd.AddCommand(snapshotCmd)
	RootCmd.AddCommand(topCmd)
	RootCmd.AddCommand(memoryCmd)
	RootCmd.AddCommand(startupCmd)
	RootCmd.AddCommand(exportCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	e, err := newEngine(snapshotSave)
	if err != nil {
		return err
	}
	defer e.Close()

	e.prime(false)
	snap := e.diag.Snapshot()
	recs := e.diag.Recommendations(snap)

	if snapshotSave {
		if _, err := e.store.SaveSnapshot(context.Background(), snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	if snapshotJSON {
		return output.WriteJSON(os.Stdout, struct {
			Snapshot        any `json:"snapshot"`
			Recommendations any `json:"recommendations"`
		}{snap, recs})
	}
	fmt.Print(output.RenderSnapshot(snap, recs))
	return nil
}

func runTop(cmd *cobra.Command, args []string) error {
	if topCount < 1 || topCount > 50 {
		return fmt.Errorf("invalid count: %d (must be 1-50)", topCount)
	}
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.prime(false)
	fmt.Print(output.RenderProcessTable(e.diag.TopProcesses(topCount)))
	return nil
}

func runMemory(cmd *cobra.Command, args []string) error {
	if memoryCount < 1 || memoryCount > 50 {
		return fmt.Errorf("invalid count: %d (must be 1-50)", memoryCount)
	}
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.prime(false)
	fmt.Print(output.RenderMemoryStats(e.diag.MemoryStats(memoryCount)))
	return nil
}

func runStartup(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Print(output.RenderStartupTable(e.diag.StartupApps()))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "json" && exportFormat != "csv" {
		return fmt.Errorf("invalid format: %q (must be json or csv)", exportFormat)
	}
	e, err := newEngine(exportHistory)
	if err != nil {
		return err
	}
	defer e.Close()

	w := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	if exportFormat == "csv" && exportHistory {
		snaps, err := e.store.ListSnapshots(context.Background(), 0)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		return output.WriteSnapshotsCSV(w, snaps)
	}

	e.prime(false)
	snap := e.diag.Snapshot()
	if exportFormat == "csv" {
		return output.WriteSnapshotsCSV(w, []model.Snapshot{snap})
	}
	return output.WriteJSON(w, output.Export{
		GeneratedAt:     time.Now(),
		Snapshot:        snap,
		Recommendations: e.diag.Recommendations(snap),
		TopProcesses:    e.diag.TopProcesses(e.cfg.Monitor.Top),
		StartupApps:     e.diag.StartupApps(),
	})
}
