// Package output renders engine results for the terminal and for export.
//
// Tables are plain fixed-width text. ANSI colour is added only when
// stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled reports whether ANSI colour codes should be emitted.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

func statusColor(s model.HealthStatus) string {
	switch s {
	case model.StatusOk:
		return colorGreen
	case model.StatusWarning:
		return colorYellow
	case model.StatusCritical:
		return colorRed
	default:
		return colorGray
	}
}

func rule(n int) string { return strings.Repeat("─", n) + "\n" }

// RenderSnapshot renders the health summary followed by recommendations.
func RenderSnapshot(s model.Snapshot, recs []model.Recommendation) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Health: %s  (%s)\n",
		colorize(statusColor(s.Status), fmt.Sprintf("%d/100", s.HealthScore)),
		colorize(statusColor(s.Status), s.Status.String())))
	sb.WriteString(rule(40))
	sb.WriteString(fmt.Sprintf("%-18s %s\n", "CPU", model.FormatPercent(s.CPUPercent)))
	sb.WriteString(fmt.Sprintf("%-18s %s\n", "RAM", model.FormatPercent(s.RAMPercent)))
	sb.WriteString(fmt.Sprintf("%-18s %s\n", "RAM available", formatGB(s.RAMAvailableGB)))
	sb.WriteString(fmt.Sprintf("%-18s %s\n", "Disk free", model.FormatPercent(s.DiskFreePercent)))
	sb.WriteString(fmt.Sprintf("%-18s %s\n", "Disk free space", formatGB(s.DiskFreeGB)))

	if len(recs) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, r := range recs {
			sb.WriteString(fmt.Sprintf("  %s %s: %s\n",
				colorize(statusColor(r.Severity), "●"), r.Title, r.Description))
		}
	}
	return sb.String()
}

// RenderProcessTable renders the top-process list in the order given.
func RenderProcessTable(rows []model.ProcessUsage) string {
	if len(rows) == 0 {
		return "No processes found.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s %-28s %8s %12s\n", "PID", "Name", "CPU", "Memory"))
	sb.WriteString(rule(59))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-8d %-28s %8s %12s\n",
			r.PID, truncate(r.Name, 28), model.FormatPercent(r.CPUPercent), formatMB(r.MemoryMB)))
	}
	return sb.String()
}

// RenderCandidateTable renders optimization candidates with protected
// entries marked.
func RenderCandidateTable(cands []model.OptimizationCandidate) string {
	if len(cands) == 0 {
		return "No candidate applications running.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %6s %12s %8s  %s\n", "Application", "Procs", "Memory", "CPU", "Description"))
	sb.WriteString(rule(90))
	for _, c := range cands {
		name := truncate(c.Name, 24)
		if c.Critical {
			name = colorize(colorRed, fmt.Sprintf("%-24s", truncate(c.Name+" (protected)", 24)))
		} else {
			name = fmt.Sprintf("%-24s", name)
		}
		sb.WriteString(fmt.Sprintf("%s %6d %12s %8s  %s\n",
			name, c.ProcessCount, formatMB(c.MemoryMB), model.FormatPercent(c.CPUPercent), c.Description))
	}
	return sb.String()
}

// RenderDriveTable renders drives. media may be nil or miss entries.
func RenderDriveTable(list []model.DriveInfo, media map[string]model.MediaType) string {
	if len(list) == 0 {
		return "No ready drives found.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-16s %-10s %-5s %10s %10s %7s\n",
		"Drive", "Name", "Kind", "Media", "Total", "Free", "Used"))
	sb.WriteString(rule(80))
	for _, d := range list {
		m := "-"
		if mt, ok := media[d.Letter]; ok {
			m = string(mt)
		}
		sb.WriteString(fmt.Sprintf("%-16s %-16s %-10s %-5s %10s %10s %6.1f%%\n",
			truncate(d.Letter, 16), truncate(d.Name, 16), d.Kind, m,
			humanize.IBytes(d.TotalBytes), humanize.IBytes(d.FreeBytes), d.UsagePercent()))
	}
	return sb.String()
}

func RenderStartupTable(apps []model.StartupApp) string {
	if len(apps) == 0 {
		return "No startup applications found.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-40s %s\n", "Name", "Location", "Command"))
	sb.WriteString(rule(100))
	for _, a := range apps {
		sb.WriteString(fmt.Sprintf("%-28s %-40s %s\n", truncate(a.Name, 28), truncate(a.Location, 40), a.Command))
	}
	return sb.String()
}

// RenderMemoryStats renders the detailed memory view.
func RenderMemoryStats(m model.MemoryStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CPU %s | RAM %s of %s (%s)\n",
		model.FormatPercent(m.CPUPercent), formatGB(m.RAMUsedGB), formatGB(m.RAMTotalGB), model.FormatPercent(m.RAMPercent)))
	sb.WriteString("\nTop by memory:\n")
	sb.WriteString(RenderProcessTable(m.TopByMemory))
	sb.WriteString("\nTop by CPU:\n")
	sb.WriteString(RenderProcessTable(m.TopByCPU))
	sb.WriteString(fmt.Sprintf("\n%s: %d processes, %.2f GB\n", m.BrowserName, m.BrowserProcessCount, m.BrowserRAMGB))
	return sb.String()
}

func RenderCloseResult(r model.ProcessCloseResult) string {
	return fmt.Sprintf("Closed %s: %d ok, %d failed\n", r.Name, r.Closed, r.Failed)
}

func RenderMemoryClean(r model.MemoryCleanResult) string {
	return fmt.Sprintf("Working sets trimmed: %d of %d (%d skipped)\n", r.Trimmed, r.Requested, r.Skipped)
}

func RenderTempCleanup(r model.TempCleanupResult) string {
	return fmt.Sprintf("Deleted %d temporary files, freed %s\n", r.FilesDeleted, humanize.IBytes(uint64(max(r.BytesFreed, 0))))
}

// RenderPrePlay summarises a batch close with the before/after figures.
func RenderPrePlay(r model.PrePlayResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Before: CPU %s | RAM %s | Disk free %s\n",
		model.FormatPercent(r.Before.CPUPercent), model.FormatPercent(r.Before.RAMPercent), model.FormatPercent(r.Before.DiskFreePercent)))
	sb.WriteString(fmt.Sprintf("After:  CPU %s | RAM %s | Disk free %s\n",
		model.FormatPercent(r.After.CPUPercent), model.FormatPercent(r.After.RAMPercent), model.FormatPercent(r.After.DiskFreePercent)))
	if len(r.Closed) > 0 {
		sb.WriteString("\n")
		for _, c := range r.Closed {
			sb.WriteString(RenderCloseResult(c))
		}
	}
	if len(r.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkipped: %s\n", strings.Join(r.Skipped, ", ")))
	}
	if r.Stopped {
		sb.WriteString("\nStopped early.\n")
	}
	return sb.String()
}

// RenderReportHistory renders stored disk reports, newest first.
func RenderReportHistory(reports []model.DiskReport) string {
	if len(reports) == 0 {
		return "No disk operations recorded.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-24s %-8s %10s %10s  %s\n", "Drive", "Operation", "Result", "Freed", "Took", "When"))
	sb.WriteString(rule(90))
	for _, r := range reports {
		result := colorize(colorGreen, fmt.Sprintf("%-8s", "ok"))
		if !r.Success {
			result = colorize(colorRed, fmt.Sprintf("%-8s", "failed"))
		}
		sb.WriteString(fmt.Sprintf("%-16s %-24s %s %10s %10s  %s\n",
			truncate(r.Drive, 16), r.Operation.DisplayName(), result,
			humanize.IBytes(uint64(max(r.BytesFreed, 0))), formatDuration(r.Duration), humanize.Time(r.ExecutedAt)))
	}
	return sb.String()
}

// RenderSnapshotHistory renders stored snapshots, newest first.
func RenderSnapshotHistory(snaps []model.Snapshot) string {
	if len(snaps) == 0 {
		return "No snapshots recorded.\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %8s %8s %10s %7s  %s\n", "When", "CPU", "RAM", "Disk free", "Score", "Status"))
	sb.WriteString(rule(70))
	for _, s := range snaps {
		sb.WriteString(fmt.Sprintf("%-20s %8s %8s %10s %7d  %s\n",
			truncate(humanize.Time(s.Timestamp), 20), model.FormatPercent(s.CPUPercent), model.FormatPercent(s.RAMPercent),
			model.FormatPercent(s.DiskFreePercent), s.HealthScore, colorize(statusColor(s.Status), s.Status.String())))
	}
	return sb.String()
}

func formatGB(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f GB", *v)
}

func formatMB(mb float64) string {
	return humanize.IBytes(uint64(mb * 1024 * 1024))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// truncate shortens s to maxLen runes, marking the cut with "…".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
