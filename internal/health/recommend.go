package health

import "github.com/Dicklesworthstone/sysoptimizer/internal/model"

const (
	highCPU      = 80
	highRAM      = 85
	lowDiskSpace = 15
)

// Recommendations lists follow-up hints for a snapshot. It always returns
// at least one entry.
func Recommendations(s model.Snapshot) []model.Recommendation {
	var recs []model.Recommendation

	if s.CPUPercent != nil && *s.CPUPercent >= highCPU {
		recs = append(recs, model.Recommendation{
			Title:       "High CPU",
			Description: "CPU usage is elevated. Consider closing high-consumption processes.",
			Severity:    model.StatusWarning,
		})
	}
	if s.RAMPercent != nil && *s.RAMPercent >= highRAM {
		recs = append(recs, model.Recommendation{
			Title:       "High memory",
			Description: "RAM is close to its limit. Close applications you are not using.",
			Severity:    model.StatusWarning,
		})
	}
	if s.DiskFreePercent != nil && *s.DiskFreePercent <= lowDiskSpace {
		recs = append(recs, model.Recommendation{
			Title:       "Low disk space",
			Description: "Free up space by purging temporary files or removing large files.",
			Severity:    model.StatusWarning,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, model.Recommendation{
			Title:       "All clear",
			Description: "No critical problems detected.",
			Severity:    model.StatusOk,
		})
	}
	return recs
}
