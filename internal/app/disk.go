package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/output"
)

var drivesMedia bool

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "List ready drives with capacity and usage",
	Args:  cobra.NoArgs,
	RunE:  runDrives,
}

var driveTypeCmd = &cobra.Command{
	Use:   "drivetype <drive>",
	Short: "Classify a drive as SSD or HDD",
	Long: `Classify a drive as SSD or HDD. Detection tries the fast storage query
first, then a boot-volume heuristic, then the slower hardware query.
A drive nothing can classify is reported as HDD.`,
	Example: `  sysopt drivetype C:
  sysopt drivetype /`,
	Args: cobra.ExactArgs(1),
	RunE: runDriveType,
}

var purgeCmd = &cobra.Command{
	Use:   "purge <drive>",
	Short: "Delete temporary files on a drive",
	Long: `Delete the contents of every temporary directory that lives on the
drive. Files in use or protected are skipped; the directories themselves
are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiskOp(args[0], model.OpTempPurge)
	},
}

var trimCmd = &cobra.Command{
	Use:   "trim <drive>",
	Short: "Send TRIM to a solid-state drive",
	Long: `Tell a solid-state drive which blocks are unused. Refused without side
effects when the drive is not classified SSD. Usually needs elevated
privileges.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiskOp(args[0], model.OpTrim)
	},
}

var defragCmd = &cobra.Command{
	Use:   "defrag <drive>",
	Short: "Defragment a hard drive",
	Long: `Defragment a rotational drive. Always refused on drives classified SSD.
The pass has no time limit and may take hours.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiskOp(args[0], model.OpDefragment)
	},
}

var cleanTempCmd = &cobra.Command{
	Use:   "clean-temp",
	Short: "Delete temporary files in every temp directory",
	Args:  cobra.NoArgs,
	RunE:  runCleanTemp,
}

func init() {
	drivesCmd.Flags().BoolVar(&drivesMedia, "media", false, "Also classify each drive as SSD or HDD")

	RootCmd.AddCommand(drivesCmd)
	RootCmd.AddCommand(driveTypeCmd)
	RootCmd.AddCommand(purgeCmd)
	RootCmd.AddCommand(trimCmd)
	RootCmd.AddCommand(defragCmd)
	RootCmd.AddCommand(cleanTempCmd)
}

func runDrives(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	list := e.disk.ListDrives()
	var media map[string]model.MediaType
	if drivesMedia {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		media = make(map[string]model.MediaType, len(list))
		for _, d := range list {
			media[d.Letter] = e.disk.GetDriveType(ctx, d.Letter)
		}
	}
	fmt.Print(output.RenderDriveTable(list, media))
	return nil
}

func runDriveType(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := lookupDrive(e, args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Printf("%s: %s\n", d.Letter, e.disk.GetDriveType(ctx, d.Letter).Label())
	return nil
}

// errOperationFailed makes the process exit non-zero after a report that
// did not succeed has been printed.
var errOperationFailed = errors.New("operation did not succeed")

func runDiskOp(letter string, kind model.OperationKind) error {
	e, err := newEngine(true)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := lookupDrive(e, letter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var rep model.DiskReport
	switch kind {
	case model.OpTempPurge:
		rep = e.disk.CleanTempFiles(ctx, d.Letter)
	case model.OpTrim:
		rep = e.disk.ExecuteTrim(ctx, d.Letter)
	case model.OpDefragment:
		rep = e.disk.Defragment(ctx, d.Letter)
	default:
		return fmt.Errorf("unknown operation %v", kind)
	}

	fmt.Print(output.FormatReport(rep))
	if !rep.Success {
		return errOperationFailed
	}
	return nil
}

func runCleanTemp(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Print(output.RenderTempCleanup(e.diag.CleanTempFiles()))
	return nil
}

func lookupDrive(e *engine, letter string) (model.DriveInfo, error) {
	d, err := e.disk.GetDriveInfo(letter)
	if errors.Is(err, drives.ErrNotFound) {
		return d, fmt.Errorf("drive %s not found (run 'sysopt drives' to list ready drives)", letter)
	}
	return d, err
}
