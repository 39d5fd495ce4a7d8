//go:build windows

package optimize

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

type windowsTools struct{}

func DefaultToolset() Toolset { return windowsTools{} }

func (windowsTools) TrimQuery(Volume) runner.Command {
	return runner.Command{Name: "fsutil", Args: []string{"behavior", "query", "DisableDeleteNotify"}}
}

func (windowsTools) Trim(v Volume) runner.Command {
	return runner.Command{
		Name: "powershell",
		Args: []string{"-NoProfile", "-NonInteractive", "-Command",
			"Optimize-Volume -DriveLetter " + strings.TrimSuffix(v.Letter, ":") + " -ReTrim -Verbose"},
	}
}

func (windowsTools) Defrag(v Volume) runner.Command {
	return runner.Command{Name: "defrag", Args: []string{v.Letter, "/U", "/V"}}
}

func (windowsTools) TempDirs(letter string) []string {
	root := letter + `\`
	return []string{
		os.Getenv("TEMP"),
		os.Getenv("TMP"),
		filepath.Join(root, "Windows", "Temp"),
		filepath.Join(root, "Windows", "Prefetch"),
	}
}
