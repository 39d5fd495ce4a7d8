package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// FormatReport renders one disk report as a block of text.
func FormatReport(r model.DiskReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s on %s\n", r.Operation.DisplayName(), r.Drive))
	sb.WriteString(rule(50))

	status := colorize(colorGreen, "Success")
	if !r.Success {
		status = colorize(colorRed, "Failed")
	}
	sb.WriteString(fmt.Sprintf("%-12s %s\n", "Status", status))

	switch r.Operation {
	case model.OpTempPurge:
		sb.WriteString(fmt.Sprintf("%-12s %s\n", "Freed", humanize.IBytes(uint64(max(r.BytesFreed, 0)))))
		sb.WriteString(fmt.Sprintf("%-12s %d\n", "Files", r.FileCount))
	default:
		if r.BytesFreed > 0 {
			sb.WriteString(fmt.Sprintf("%-12s %s\n", "Processed", humanize.IBytes(uint64(r.BytesFreed))))
		}
	}
	sb.WriteString(fmt.Sprintf("%-12s %s\n", "Duration", formatDuration(r.Duration)))
	if !r.ExecutedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("%-12s %s\n", "Executed", r.ExecutedAt.Format("2006-01-02 15:04:05")))
	}
	if r.Description != "" {
		sb.WriteString("\n" + r.Description + "\n")
	}
	if len(r.Benefits) > 0 {
		sb.WriteString("\nBenefits:\n")
		for i, b := range r.Benefits {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, b))
		}
	}
	return sb.String()
}
