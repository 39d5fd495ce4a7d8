package drivetype

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

// DefaultProbeTimeout bounds the fast external query.
const DefaultProbeTimeout = 3 * time.Second

// DeviceFunc resolves a volume to the block device behind it.
type DeviceFunc func(letter string) (string, error)

// StorageQuery asks PowerShell's storage module for the MediaType of the
// physical disk holding a drive letter.
type StorageQuery struct {
	Runner  runner.Runner
	Timeout time.Duration
}

func (StorageQuery) Name() string { return "storage-query" }

func (s StorageQuery) Attempt(ctx context.Context, letter string) Verdict {
	l := strings.TrimSuffix(drives.Normalize(letter), ":")
	if len(l) != 1 {
		return Inconclusive
	}
	script := fmt.Sprintf("Get-PhysicalDisk | Where-Object { $_.DeviceId -eq "+
		"(Get-Partition -DriveLetter '%s' -ErrorAction SilentlyContinue | Select-Object -ExpandProperty DiskNumber) } "+
		"| Select-Object -ExpandProperty MediaType", l)
	res := s.Runner.Run(ctx, runner.Command{
		Name:    "powershell",
		Args:    []string{"-NoProfile", "-NonInteractive", "-Command", script},
		Timeout: s.Timeout,
	})
	if !res.OK() {
		return Inconclusive
	}
	return ParseMediaType(res.Output)
}

// Lsblk reads the rotational flag of the device behind a mount point.
type Lsblk struct {
	Runner  runner.Runner
	Timeout time.Duration
	Device  DeviceFunc
}

func (Lsblk) Name() string { return "lsblk" }

func (s Lsblk) Attempt(ctx context.Context, letter string) Verdict {
	dev, err := s.Device(letter)
	if err != nil || dev == "" {
		return Inconclusive
	}
	res := s.Runner.Run(ctx, runner.Command{
		Name:    "lsblk",
		Args:    []string{"-d", "-n", "-o", "ROTA", dev},
		Timeout: s.Timeout,
	})
	if !res.OK() {
		return Inconclusive
	}
	return ParseRotational(res.Output)
}

// BootVolume assumes the OS volume is solid-state when Marker exists on
// it. This is a guess: an OS installed on spinning media is misreported.
type BootVolume struct {
	System string
	Marker string
}

func (BootVolume) Name() string { return "boot-volume" }

func (b BootVolume) Attempt(_ context.Context, letter string) Verdict {
	l := drives.Normalize(letter)
	if l == "" || l != drives.Normalize(b.System) {
		return Inconclusive
	}
	if b.Marker != "" {
		if _, err := os.Stat(b.Marker); err != nil {
			return Inconclusive
		}
	}
	return SSD
}

// Sysfs reads /sys/block/<dev>/queue/rotational for the device or, for a
// partition, its parent disk. NVMe devices are always solid-state.
type Sysfs struct {
	Root   string
	Device DeviceFunc
}

func (Sysfs) Name() string { return "sysfs" }

func (s Sysfs) Attempt(_ context.Context, letter string) Verdict {
	dev, err := s.Device(letter)
	if err != nil || dev == "" {
		return Inconclusive
	}
	base := filepath.Base(dev)
	if strings.HasPrefix(base, "nvme") {
		return SSD
	}
	root := s.Root
	if root == "" {
		root = "/sys"
	}
	for _, name := range []string{base, ParentDevice(base)} {
		b, err := os.ReadFile(filepath.Join(root, "block", name, "queue", "rotational"))
		if err != nil {
			continue
		}
		if v := ParseRotational(string(b)); v != Inconclusive {
			return v
		}
	}
	return Inconclusive
}

var (
	pPartition     = regexp.MustCompile(`^((?:nvme\d+n\d+)|(?:mmcblk\d+)|(?:loop\d+))p\d+$`)
	plainPartition = regexp.MustCompile(`^([a-z]+)\d+$`)
)

// ParentDevice strips a partition suffix: sda1 → sda, nvme0n1p2 → nvme0n1,
// mmcblk0p1 → mmcblk0. Whole-disk names are returned unchanged.
func ParentDevice(name string) string {
	if m := pPartition.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	for _, prefix := range []string{"nvme", "mmcblk", "loop"} {
		if strings.HasPrefix(name, prefix) {
			return name
		}
	}
	if m := plainPartition.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}
