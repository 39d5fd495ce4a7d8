package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Export is the full diagnostics document written by the export command.
type Export struct {
	GeneratedAt     time.Time              `json:"generated_at"`
	Snapshot        model.Snapshot         `json:"snapshot"`
	Recommendations []model.Recommendation `json:"recommendations"`
	TopProcesses    []model.ProcessUsage   `json:"top_processes"`
	StartupApps     []model.StartupApp     `json:"startup_apps"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var csvHeader = []string{
	"Timestamp", "CpuUsagePercent", "RamUsagePercent", "RamAvailableGb",
	"DiskFreePercent", "DiskFreeGb", "HealthScore", "HealthStatus",
}

// WriteSnapshotsCSV writes one row per snapshot. Unknown metrics are
// left empty.
func WriteSnapshotsCSV(w io.Writer, snaps []model.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range snaps {
		row := []string{
			s.Timestamp.Format(time.RFC3339),
			csvFloat(s.CPUPercent),
			csvFloat(s.RAMPercent),
			csvFloat(s.RAMAvailableGB),
			csvFloat(s.DiskFreePercent),
			csvFloat(s.DiskFreeGB),
			strconv.Itoa(s.HealthScore),
			s.Status.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
