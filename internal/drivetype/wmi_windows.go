//go:build windows

package drivetype

import (
	"context"
	"fmt"

	"github.com/yusufpapurcu/wmi"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
)

type win32DiskPartition struct {
	DeviceID string
}

type win32DiskDrive struct {
	DeviceID      string
	Model         string
	MediaType     string
	InterfaceType string
}

// WMI walks Win32_LogicalDisk → Win32_DiskPartition → Win32_DiskDrive.
type WMI struct{}

func (WMI) Name() string { return "wmi" }

func (WMI) Attempt(_ context.Context, letter string) Verdict {
	id := drives.Normalize(letter)
	if id == "" {
		return Inconclusive
	}
	var parts []win32DiskPartition
	q := fmt.Sprintf(`ASSOCIATORS OF {Win32_LogicalDisk.DeviceID='%s'} WHERE AssocClass=Win32_LogicalDiskToPartition`, id)
	if err := wmi.Query(q, &parts); err != nil {
		return Inconclusive
	}
	for _, p := range parts {
		var disks []win32DiskDrive
		q := fmt.Sprintf(`ASSOCIATORS OF {Win32_DiskPartition.DeviceID='%s'} WHERE AssocClass=Win32_DiskDriveToDiskPartition`, p.DeviceID)
		if err := wmi.Query(q, &disks); err != nil {
			continue
		}
		for _, d := range disks {
			if v := ClassifyDiskDrive(d.MediaType, d.InterfaceType, d.Model); v != Inconclusive {
				return v
			}
		}
	}
	return Inconclusive
}
