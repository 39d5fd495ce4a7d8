//go:build !windows

package drivetype

import (
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

// DefaultStrategies is the Unix cascade: lsblk, then the boot-volume
// guess, then sysfs.
func DefaultStrategies(r runner.Runner, probeTimeout time.Duration) []Strategy {
	return []Strategy{
		Lsblk{Runner: r, Timeout: probeTimeout, Device: drives.Device},
		BootVolume{System: drives.SystemDrive(), Marker: "/usr"},
		Sysfs{Device: drives.Device},
	}
}
