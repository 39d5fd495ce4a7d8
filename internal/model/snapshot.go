package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HealthStatus is the tier derived from a health score.
type HealthStatus int

const (
	StatusUnknown HealthStatus = iota
	StatusOk
	StatusWarning
	StatusCritical
)

func (s HealthStatus) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusWarning:
		return "Warning"
	case StatusCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s HealthStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a status name; unrecognised names map to StatusUnknown.
func (s *HealthStatus) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "ok":
		*s = StatusOk
	case "warning":
		*s = StatusWarning
	case "critical":
		*s = StatusCritical
	case "unknown", "":
		*s = StatusUnknown
	default:
		return fmt.Errorf("unknown health status %q", string(b))
	}
	return nil
}

// Snapshot is a point-in-time view of host resource usage. Nil metric
// pointers mean the underlying OS query failed.
type Snapshot struct {
	Timestamp       time.Time    `json:"timestamp"`
	CPUPercent      *float64     `json:"cpu_usage_percent"`
	RAMPercent      *float64     `json:"ram_usage_percent"`
	RAMAvailableGB  *float64     `json:"ram_available_gb"`
	DiskFreePercent *float64     `json:"disk_free_percent"`
	DiskFreeGB      *float64     `json:"disk_free_gb"`
	HealthScore     int          `json:"health_score"`
	Status          HealthStatus `json:"health_status"`
}

// Recommendation is a human-readable hint derived from a snapshot.
type Recommendation struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Severity    HealthStatus `json:"severity"`
}

// Float returns a pointer to v, for optional metric fields.
func Float(v float64) *float64 { return &v }

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// FormatPercent renders an optional percentage, "N/A" when unknown.
func FormatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// BytesToGB converts a byte count to gibibytes.
func BytesToGB(b uint64) float64 { return float64(b) / (1024 * 1024 * 1024) }
