//go:build !windows

package drives

import (
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

type partitionSource struct{}

// DefaultSource reads the mount table through gopsutil.
func DefaultSource() Source { return partitionSource{} }

func (partitionSource) Volumes() ([]model.DriveInfo, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []model.DriveInfo
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		info := model.DriveInfo{
			Letter: p.Mountpoint,
			Name:   filepath.Base(p.Device),
			Kind:   KindFromFstype(p.Fstype, p.Mountpoint),
		}
		if u, err := disk.Usage(p.Mountpoint); err == nil && u.Total > 0 {
			info.Ready = true
			info.TotalBytes = u.Total
			info.FreeBytes = u.Free
		}
		out = append(out, info)
	}
	return out, nil
}

// KindFromFstype classifies a mount by filesystem type and location.
func KindFromFstype(fstype, mountpoint string) model.DriveKind {
	switch strings.ToLower(fstype) {
	case "nfs", "nfs4", "cifs", "smbfs", "smb3", "afpfs", "fuse.sshfs", "9p":
		return model.DriveNetwork
	case "iso9660", "udf", "cd9660":
		return model.DriveOptical
	case "tmpfs", "ramfs", "devtmpfs":
		return model.DriveRAM
	case "":
		return model.DriveUnknown
	}
	for _, prefix := range []string{"/media/", "/run/media/", "/Volumes/", "/mnt/"} {
		if strings.HasPrefix(mountpoint, prefix) {
			return model.DriveRemovable
		}
	}
	return model.DriveFixed
}

// Normalize cleans a mount point path.
func Normalize(letter string) string {
	s := strings.TrimSpace(letter)
	if s == "" {
		return ""
	}
	return filepath.Clean(s)
}

// SystemDrive is the root mount.
func SystemDrive() string { return "/" }

// Device returns the block device mounted at mount, e.g. "/dev/nvme0n1p2".
func Device(mount string) (string, error) {
	mount = Normalize(mount)
	parts, err := disk.Partitions(false)
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.Mountpoint == mount && strings.HasPrefix(p.Device, "/dev/") {
			return p.Device, nil
		}
	}
	return "", ErrNotFound
}
