//go:build windows

package procs

import (
	"os"
	"path/filepath"
)

// SystemDirs lists where the OS keeps its own executables.
func SystemDirs() []string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return []string{
		root,
		filepath.Join(filepath.VolumeName(root)+`\`, "Program Files", "WindowsApps"),
	}
}
