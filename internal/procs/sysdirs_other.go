//go:build !windows

package procs

// SystemDirs lists where the OS keeps its own executables.
func SystemDirs() []string {
	return []string{
		"/sbin",
		"/usr/sbin",
		"/lib",
		"/usr/lib",
		"/usr/libexec",
		"/System",
	}
}
