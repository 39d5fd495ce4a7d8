// Package ui is the live terminal monitor.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Source supplies the figures shown on each refresh.
type Source interface {
	Snapshot() model.Snapshot
	Recommendations(model.Snapshot) []model.Recommendation
	TopProcesses(n int) []model.ProcessUsage
}

// DriveLister is optional; without it the drives card is omitted.
type DriveLister interface {
	ListDrives() []model.DriveInfo
}

// Settings are the knobs that may change while the monitor runs.
type Settings struct {
	Interval time.Duration
	Top      int
}

// SettingsMsg swaps the running settings, e.g. after a config reload.
type SettingsMsg Settings

type frame struct {
	snap   model.Snapshot
	recs   []model.Recommendation
	top    []model.ProcessUsage
	drives []model.DriveInfo
}

// Model renders periodic frames taken from a Source.
type Model struct {
	src      Source
	drives   DriveLister
	settings Settings
	latest   frame
	sampled  bool
	width    int
	height   int
}

func New(src Source, drives DriveLister, s Settings) *Model {
	if s.Interval <= 0 {
		s.Interval = 2 * time.Second
	}
	if s.Top <= 0 {
		s.Top = 10
	}
	return &Model{
		src:      src,
		drives:   drives,
		settings: s,
		width:    120,
		height:   40,
	}
}

// Messages
type (
	tickMsg  struct{}
	frameMsg frame
)

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{} })
}

// sampleCmd reads the source off the update loop.
func (m *Model) sampleCmd() tea.Cmd {
	src, drives, top := m.src, m.drives, m.settings.Top
	return func() tea.Msg {
		f := frame{snap: src.Snapshot(), top: src.TopProcesses(top)}
		f.recs = src.Recommendations(f.snap)
		if drives != nil {
			f.drives = drives.ListDrives()
		}
		return frameMsg(f)
	}
}

func (m *Model) Init() tea.Cmd { return m.sampleCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.sampleCmd()
		}
	case SettingsMsg:
		if msg.Interval > 0 {
			m.settings.Interval = msg.Interval
		}
		if msg.Top > 0 {
			m.settings.Top = msg.Top
		}
	case tickMsg:
		return m, m.sampleCmd()
	case frameMsg:
		m.latest = frame(msg)
		m.sampled = true
		return m, tickCmd(m.settings.Interval)
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	critStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	if !m.sampled {
		return subtleStyle.Render("Sampling...")
	}
	f := m.latest
	header := titleStyle.Render("sysopt monitor") + "  " +
		subtleStyle.Render(f.snap.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")) + "  " +
		subtleStyle.Render(fmt.Sprintf("every %s · q quit · r refresh", m.settings.Interval))

	healthCard := card("Health",
		statusStyle(f.snap.Status).Render(fmt.Sprintf("%3d/100 %s", f.snap.HealthScore, f.snap.Status)))

	cpuCard := card("CPU", gaugeBar(f.snap.CPUPercent, 28))

	memCard := card("Memory",
		fmt.Sprintf("%s  %s free", gaugeBar(f.snap.RAMPercent, 28), gb(f.snap.RAMAvailableGB)))

	var diskUsed *float64
	if f.snap.DiskFreePercent != nil {
		diskUsed = model.Float(100 - *f.snap.DiskFreePercent)
	}
	diskCard := card("System disk",
		fmt.Sprintf("%s  %s free", gaugeBar(diskUsed, 28), gb(f.snap.DiskFreeGB)))

	topTable := card(fmt.Sprintf("Top %d", m.settings.Top), renderTable(f.top, m.settings.Top))

	columns := []string{topTable}
	if len(f.drives) > 0 {
		columns = append(columns, card("Drives", renderDrives(f.drives)))
	}

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, healthCard, cpuCard, memCard, diskCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	rows := []string{header, line1, line2}
	if len(f.recs) > 0 {
		rows = append(rows, card("Recommendations", renderRecs(f.recs)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Helpers
func gaugeBar(pct *float64, width int) string {
	if pct == nil {
		return fmt.Sprintf("[%s]   N/A", strings.Repeat(gaugeEmpty, width))
	}
	p := *pct
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := int((p / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		p)
}

func statusStyle(s model.HealthStatus) lipgloss.Style {
	switch s {
	case model.StatusOk:
		return okStyle
	case model.StatusWarning:
		return warnStyle
	case model.StatusCritical:
		return critStyle
	default:
		return subtleStyle
	}
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func renderTable(rows []model.ProcessUsage, limit int) string {
	n := min(limit, len(rows))
	var b strings.Builder
	fmt.Fprintf(&b, "%-22s %-7s %7s %9s\n", "name", "pid", "cpu", "mem MB")
	for i := 0; i < n; i++ {
		r := rows[i]
		fmt.Fprintf(&b, "%-22s %-7d %7s %9.1f\n",
			truncate(r.Name, 22), r.PID, model.FormatPercent(r.CPUPercent), r.MemoryMB)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDrives(list []model.DriveInfo) string {
	var b strings.Builder
	for _, d := range list {
		fmt.Fprintf(&b, "%-12s %5.1f%% used  %6.1f GB free\n", truncate(d.Letter, 12), d.UsagePercent(), d.FreeGB())
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRecs(recs []model.Recommendation) string {
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, statusStyle(r.Severity).Render("● "+r.Title)+"  "+r.Description)
	}
	return strings.Join(lines, "\n")
}

func gb(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f GB", *v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// NewProgram wraps m in an alt-screen program. Callers may Send
// SettingsMsg to it while it runs.
func NewProgram(m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
