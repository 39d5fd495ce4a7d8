//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// configure keeps console tools from flashing a window.
func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
