package optimize

import "github.com/Dicklesworthstone/sysoptimizer/internal/runner"

// Volume names a drive both ways the OS tools expect it.
type Volume struct {
	Letter string
	Device string
}

// Toolset builds the external commands and temp directory list for one
// platform. A zero Command from TrimQuery means there is no query step.
type Toolset interface {
	TrimQuery(v Volume) runner.Command
	Trim(v Volume) runner.Command
	Defrag(v Volume) runner.Command
	TempDirs(letter string) []string
}
