package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/output"
)

var (
	historySnapshots bool
	historyDrive     string
	historyLimit     int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past disk operations or saved snapshots",
	Long: `Show the most recent disk operations, newest first. With --snapshots,
show snapshots saved by 'sysopt snapshot --save' instead.`,
	Example: `  sysopt history
  sysopt history --drive / --limit 5
  sysopt history --snapshots`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historySnapshots, "snapshots", false, "List saved snapshots instead of disk operations")
	historyCmd.Flags().StringVar(&historyDrive, "drive", "", "Only operations on this drive")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries (0 for all)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must be 0 or more)", historyLimit)
	}
	e, err := newEngine(true)
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := context.Background()

	if historySnapshots {
		snaps, err := e.store.ListSnapshots(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read snapshots: %w", err)
		}
		fmt.Print(output.RenderSnapshotHistory(snaps))
		return nil
	}

	drive := historyDrive
	if drive != "" {
		drive = drives.Normalize(drive)
	}
	reports, err := e.store.ListReports(ctx, drive, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read disk history: %w", err)
	}
	fmt.Print(output.RenderReportHistory(reports))

	total, err := e.store.TotalBytesFreed(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to total freed space: %w", err)
	}
	if total > 0 {
		fmt.Printf("\nTotal freed: %s\n", humanize.IBytes(uint64(total)))
	}
	return nil
}
