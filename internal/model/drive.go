package model

import (
	"strings"
	"time"
)

// DriveKind classifies a mounted volume.
type DriveKind int

const (
	DriveUnknown DriveKind = iota
	DriveNoRoot
	DriveRemovable
	DriveFixed
	DriveNetwork
	DriveOptical
	DriveRAM
)

func (k DriveKind) String() string {
	switch k {
	case DriveNoRoot:
		return "no-root"
	case DriveRemovable:
		return "removable"
	case DriveFixed:
		return "fixed"
	case DriveNetwork:
		return "network"
	case DriveOptical:
		return "optical"
	case DriveRAM:
		return "ram"
	default:
		return "unknown"
	}
}

func (k DriveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// DriveInfo is a capacity snapshot of one ready volume. Letter is "C:" on
// Windows and the mount point elsewhere. Copies go stale as soon as an
// operation changes free space; refresh rather than reuse.
type DriveInfo struct {
	Letter     string    `json:"drive_letter"`
	Name       string    `json:"name"`
	TotalBytes uint64    `json:"total_bytes"`
	FreeBytes  uint64    `json:"free_bytes"`
	Kind       DriveKind `json:"drive_type"`
	Ready      bool      `json:"is_ready"`
}

func (d DriveInfo) UsedBytes() uint64 {
	if d.FreeBytes > d.TotalBytes {
		return 0
	}
	return d.TotalBytes - d.FreeBytes
}

// UsagePercent is used/total in percent, 0 for an empty volume.
func (d DriveInfo) UsagePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.UsedBytes()) * 100 / float64(d.TotalBytes)
}

// FreePercent is free/total in percent, 0 for an empty volume.
func (d DriveInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) * 100 / float64(d.TotalBytes)
}

func (d DriveInfo) TotalGB() float64 { return BytesToGB(d.TotalBytes) }
func (d DriveInfo) FreeGB() float64 { return BytesToGB(d.FreeBytes) }
func (d DriveInfo) UsedGB() float64 { return BytesToGB(d.UsedBytes()) }

// MediaType is the storage technology behind a drive.
type MediaType string

const (
	MediaSSD MediaType = "SSD"
	MediaHDD MediaType = "HDD"
)

// Label is the long display form, e.g. "SSD (Solid State Drive)".
func (m MediaType) Label() string {
	if m == MediaSSD {
		return "SSD (Solid State Drive)"
	}
	return "HDD (Hard Disk Drive)"
}

// OperationKind identifies a disk maintenance operation.
type OperationKind int

const (
	OpTempPurge OperationKind = iota
	OpTrim
	OpDefragment
)

func (o OperationKind) String() string {
	switch o {
	case OpTempPurge:
		return "temp-purge"
	case OpTrim:
		return "trim"
	case OpDefragment:
		return "defragment"
	default:
		return "unknown"
	}
}

// DisplayName is the heading used in formatted reports.
func (o OperationKind) DisplayName() string {
	switch o {
	case OpTempPurge:
		return "Temporary File Cleanup"
	case OpTrim:
		return "TRIM (SSD Optimization)"
	case OpDefragment:
		return "Defragmentation"
	default:
		return "Unknown"
	}
}

func (o OperationKind) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// ParseOperationKind is the inverse of String.
func ParseOperationKind(s string) (OperationKind, bool) {
	switch strings.ToLower(s) {
	case "temp-purge":
		return OpTempPurge, true
	case "trim":
		return OpTrim, true
	case "defragment":
		return OpDefragment, true
	}
	return 0, false
}

// DiskReport is the immutable result of one disk maintenance operation.
type DiskReport struct {
	Drive       string        `json:"drive_letter"`
	Operation   OperationKind `json:"operation"`
	Success     bool          `json:"success"`
	BytesFreed  int64         `json:"bytes_freed"`
	FileCount   int           `json:"file_count"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Benefits    []string      `json:"benefits"`
	ExecutedAt  time.Time     `json:"executed_at"`
}

func (r DiskReport) GBFreed() float64 {
	if r.BytesFreed <= 0 {
		return 0
	}
	return BytesToGB(uint64(r.BytesFreed))
}

// TempCleanupResult is the outcome of the drive-agnostic temp cleanup.
type TempCleanupResult struct {
	FilesDeleted int      `json:"files_deleted"`
	BytesFreed   int64    `json:"bytes_freed"`
	DeletedFiles []string `json:"deleted_files"`
}
