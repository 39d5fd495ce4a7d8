//go:build windows

package drives

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

type windowsSource struct{}

// DefaultSource reads the logical drive bitmask.
func DefaultSource() Source { return windowsSource{} }

func (windowsSource) Volumes() ([]model.DriveInfo, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}
	var out []model.DriveInfo
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := string(rune('A'+i)) + ":"
		root, err := windows.UTF16PtrFromString(letter + `\`)
		if err != nil {
			continue
		}
		info := model.DriveInfo{
			Letter: letter,
			Kind:   kindFromDriveType(windows.GetDriveType(root)),
		}

		var avail, total, totalFree uint64
		if err := windows.GetDiskFreeSpaceEx(root, &avail, &total, &totalFree); err == nil && total > 0 {
			info.Ready = true
			info.TotalBytes = total
			info.FreeBytes = avail
		}

		var label [windows.MAX_PATH + 1]uint16
		if err := windows.GetVolumeInformation(root, &label[0], uint32(len(label)), nil, nil, nil, nil, 0); err == nil {
			info.Name = windows.UTF16ToString(label[:])
		}
		out = append(out, info)
	}
	return out, nil
}

func kindFromDriveType(t uint32) model.DriveKind {
	switch t {
	case windows.DRIVE_NO_ROOT_DIR:
		return model.DriveNoRoot
	case windows.DRIVE_REMOVABLE:
		return model.DriveRemovable
	case windows.DRIVE_FIXED:
		return model.DriveFixed
	case windows.DRIVE_REMOTE:
		return model.DriveNetwork
	case windows.DRIVE_CDROM:
		return model.DriveOptical
	case windows.DRIVE_RAMDISK:
		return model.DriveRAM
	default:
		return model.DriveUnknown
	}
}

// Normalize turns "c", "c:" or `C:\` into "C:".
func Normalize(letter string) string {
	s := strings.TrimSpace(letter)
	s = strings.TrimRight(s, `\/`)
	s = strings.TrimSuffix(s, ":")
	if len(s) != 1 {
		return ""
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return ""
	}
	return string(c) + ":"
}

// SystemDrive is the volume holding the OS.
func SystemDrive() string {
	if d := Normalize(os.Getenv("SystemDrive")); d != "" {
		return d
	}
	return "C:"
}

// Device returns the identifier storage tools expect for a volume, which
// on Windows is the letter itself.
func Device(letter string) (string, error) {
	if d := Normalize(letter); d != "" {
		return d, nil
	}
	return "", ErrNotFound
}
