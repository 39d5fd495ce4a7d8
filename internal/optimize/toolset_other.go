//go:build !windows

package optimize

import (
	"os"

	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

type unixTools struct{}

func DefaultToolset() Toolset { return unixTools{} }

func (unixTools) TrimQuery(v Volume) runner.Command {
	if v.Device == "" {
		return runner.Command{}
	}
	return runner.Command{Name: "lsblk", Args: []string{"--discard", v.Device}}
}

func (unixTools) Trim(v Volume) runner.Command {
	return runner.Command{Name: "fstrim", Args: []string{"-v", v.Letter}}
}

func (unixTools) Defrag(v Volume) runner.Command {
	return runner.Command{Name: "e4defrag", Args: []string{v.Letter}}
}

// TempDirs is the same on every mount; the orchestrator keeps the ones
// that live on the requested one.
func (unixTools) TempDirs(string) []string {
	return []string{os.Getenv("TMPDIR"), "/tmp", "/var/tmp"}
}
