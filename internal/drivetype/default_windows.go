//go:build windows

package drivetype

import (
	"os"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

// DefaultStrategies is the Windows cascade: PowerShell storage query,
// then the boot-volume guess, then WMI disk associations.
func DefaultStrategies(r runner.Runner, probeTimeout time.Duration) []Strategy {
	marker := os.Getenv("SystemRoot")
	if marker == "" {
		marker = `C:\Windows`
	}
	return []Strategy{
		StorageQuery{Runner: r, Timeout: probeTimeout},
		BootVolume{System: drives.SystemDrive(), Marker: marker},
		WMI{},
	}
}
