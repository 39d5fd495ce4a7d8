package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysoptimizer/internal/diagnostics"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/output"
	"github.com/Dicklesworthstone/sysoptimizer/internal/procs"
)

var optimizeAll bool

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List running user applications that could be closed",
	Long: `List running applications installed outside the operating system,
grouped by name and ordered by memory use. Protected system processes
are marked and are never closed.`,
	Args: cobra.NoArgs,
	RunE: runCandidates,
}

var closeCmd = &cobra.Command{
	Use:   "close <name>",
	Short: "Terminate every process with the given name",
	Long: `Terminate every process whose name matches (case-insensitive), together
with its child processes. Protected system processes are refused.`,
	Example: `  sysopt close slack`,
	Args:    cobra.ExactArgs(1),
	RunE:    runClose,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [names...]",
	Short: "Close candidate applications with a before/after snapshot",
	Long: `Close running candidate applications, asking for each one unless --all
is given. With names, only those candidates are considered.

At each prompt answer y to close, s to skip, or q to stop.`,
	Example: `  sysopt optimize
  sysopt optimize --all discord steam`,
	RunE: runOptimize,
}

var cleanMemoryCmd = &cobra.Command{
	Use:   "clean-memory [pids...]",
	Short: "Ask the OS to trim process working sets",
	Long: `Ask the OS to trim the working set of each listed process, or of the
top memory consumers when none are given. Unsupported platforms report
every process as skipped.`,
	RunE: runCleanMemory,
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeAll, "all", false, "Close every candidate without asking")

	RootCmd.AddCommand(candidatesCmd)
	RootCmd.AddCommand(closeCmd)
	RootCmd.AddCommand(optimizeCmd)
	RootCmd.AddCommand(cleanMemoryCmd)
}

func runCandidates(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.prime(true)
	fmt.Print(output.RenderCandidateTable(e.diag.Candidates()))
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	name := args[0]
	if e.diag.IsCritical(name) {
		return fmt.Errorf("%s is a protected system process", name)
	}
	res := e.diag.CloseByName(name)
	if res.Closed == 0 && res.Failed == 0 {
		fmt.Printf("No running process named %s.\n", name)
		return nil
	}
	fmt.Print(output.RenderCloseResult(res))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.prime(true)
	cands := filterCandidates(e.diag.Candidates(), args)
	if len(cands) == 0 {
		fmt.Println("No candidate applications running.")
		return nil
	}

	var decide diagnostics.Decider = diagnostics.CloseAll
	if !optimizeAll {
		decide = promptDecider(os.Stdin, os.Stdout)
	}
	fmt.Print(output.RenderPrePlay(e.diag.OptimizeBatch(cands, decide)))
	return nil
}

func runCleanMemory(cmd *cobra.Command, args []string) error {
	pids, err := parsePIDs(args)
	if err != nil {
		return err
	}
	e, err := newEngine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if len(pids) == 0 {
		for _, p := range e.diag.MemoryStats(procs.MaxTop).TopByMemory {
			pids = append(pids, p.PID)
		}
	}
	fmt.Print(output.RenderMemoryClean(e.diag.CleanMemory(pids)))
	return nil
}

// filterCandidates keeps the candidates named in names, or all of them
// when names is empty.
func filterCandidates(cands []model.OptimizationCandidate, names []string) []model.OptimizationCandidate {
	if len(names) == 0 {
		return cands
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	out := []model.OptimizationCandidate{}
	for _, c := range cands {
		if want[strings.ToLower(c.Name)] {
			out = append(out, c)
		}
	}
	return out
}

// promptDecider asks on out and reads one answer per candidate from in.
// End of input stops the batch.
func promptDecider(in io.Reader, out io.Writer) diagnostics.Decider {
	r := bufio.NewReader(in)
	return func(c model.OptimizationCandidate) diagnostics.Decision {
		for {
			fmt.Fprintf(out, "Close %s (%d processes, %.0f MB)? [y/s/q] ", c.Name, c.ProcessCount, c.MemoryMB)
			line, err := r.ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return diagnostics.Close
			case "s", "skip", "n", "no":
				return diagnostics.Skip
			case "q", "quit", "stop":
				return diagnostics.Stop
			}
			if err != nil {
				return diagnostics.Stop
			}
		}
	}
}

func parsePIDs(args []string) ([]int32, error) {
	pids := make([]int32, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 32)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid pid: %q", a)
		}
		pids = append(pids, int32(n))
	}
	return pids, nil
}
