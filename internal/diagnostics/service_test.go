package diagnostics

import (
	"errors"
	"testing"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/procs"
	"github.com/Dicklesworthstone/sysoptimizer/internal/sampler"
)

const (
	mb = 1024 * 1024
	gb = 1024 * mb
)

type proc struct {
	pid    int32
	name   string
	exe    string
	cpu    time.Duration
	rss    uint64
	killed *int
}

type table []*proc

func (t table) Processes() ([]procs.Handle, error) {
	out := make([]procs.Handle, len(t))
	for i, p := range t {
		out[i] = handle{p}
	}
	return out, nil
}

type handle struct{ p *proc }

func (h handle) PID() int32 { return h.p.pid }
func (h handle) Name() (string, error) { return h.p.name, nil }
func (h handle) Exe() (string, error) { return h.p.exe, nil }
func (h handle) CPUTime() (time.Duration, error) { return h.p.cpu, nil }
func (h handle) WorkingSet() (uint64, error) { return h.p.rss, nil }
func (h handle) CreateTime() (int64, error) { return int64(h.p.pid), nil }

func (h handle) KillTree() error {
	if h.p.killed != nil {
		*h.p.killed++
	}
	return nil
}

type volumes []model.DriveInfo

func (v volumes) Volumes() ([]model.DriveInfo, error) { return v, nil }

type harness struct {
	now     time.Time
	cpu     time.Duration
	memErr  error
	table   table
	trimmed []int32
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) service(t *testing.T) *Service {
	t.Helper()
	smp := sampler.New(
		sampler.WithClock(h.clock),
		sampler.WithCores(2),
		sampler.WithCPUTime(func() (time.Duration, error) { return h.cpu, nil }),
		sampler.WithMemory(func() (uint64, uint64, error) { return 16 * gb, 4 * gb, h.memErr }),
	)
	catalog := procs.NewCatalog([]string{"explorer"}, nil)
	return New(Config{
		Sampler: smp,
		Drives: drives.New(volumes{
			{Letter: drives.SystemDrive(), Ready: true, TotalBytes: 100 * gb, FreeBytes: 50 * gb},
		}, nil),
		Processes: procs.NewInventory(h.table, catalog,
			procs.WithClock(h.clock), procs.WithCores(1), procs.WithOSDirs(false, "/usr/lib")),
		Terminator: procs.NewTerminator(h.table, catalog, nil),
		Trim: func(pid int32) error {
			if pid == 99 {
				return errors.New("gone")
			}
			h.trimmed = append(h.trimmed, pid)
			return nil
		},
		Browser: "chrome",
		Clock:   h.clock,
	})
}

func TestSnapshot(t *testing.T) {
	h := &harness{now: time.Unix(1000, 0)}
	svc := h.service(t)

	first := svc.Snapshot()
	if first.CPUPercent != nil {
		t.Errorf("first CPU = %v, want unknown", *first.CPUPercent)
	}
	if first.RAMPercent == nil || *first.RAMPercent != 75 {
		t.Errorf("RAMPercent = %v, want 75", first.RAMPercent)
	}
	if first.RAMAvailableGB == nil || *first.RAMAvailableGB != 4 {
		t.Errorf("RAMAvailableGB = %v", first.RAMAvailableGB)
	}
	if first.DiskFreePercent == nil || *first.DiskFreePercent != 50 {
		t.Errorf("DiskFreePercent = %v", first.DiskFreePercent)
	}
	if first.DiskFreeGB == nil || *first.DiskFreeGB != 50 {
		t.Errorf("DiskFreeGB = %v", first.DiskFreeGB)
	}

	h.now = h.now.Add(time.Second)
	h.cpu = 500 * time.Millisecond
	second := svc.Snapshot()
	if second.CPUPercent == nil || *second.CPUPercent != 25 {
		t.Fatalf("CPUPercent = %v, want 25", second.CPUPercent)
	}
	// RAM at 75% costs ten points.
	if second.HealthScore != 90 || second.Status != model.StatusOk {
		t.Errorf("score = %d %v", second.HealthScore, second.Status)
	}
}

func TestSnapshot_AllUnknown(t *testing.T) {
	h := &harness{now: time.Unix(0, 0), memErr: errors.New("no counters")}
	smp := sampler.New(
		sampler.WithClock(h.clock),
		sampler.WithMemory(func() (uint64, uint64, error) { return 0, 0, h.memErr }),
		sampler.WithCPUTime(func() (time.Duration, error) { return 0, nil }),
	)
	svc := New(Config{Sampler: smp, Drives: drives.New(volumes{}, nil), Processes: procs.NewInventory(table{}, nil), Clock: h.clock})
	snap := svc.Snapshot()
	if snap.HealthScore != 0 || snap.Status != model.StatusUnknown {
		t.Errorf("score = %d %v, want 0 Unknown", snap.HealthScore, snap.Status)
	}
}

func TestMemoryStats(t *testing.T) {
	h := &harness{
		now: time.Unix(0, 0),
		table: table{
			{pid: 1, name: "chrome", rss: 300 * mb},
			{pid: 2, name: "chrome", rss: 100 * mb},
			{pid: 3, name: "editor", rss: 700 * mb},
		},
	}
	svc := h.service(t)

	stats := svc.MemoryStats(10)
	if stats.RAMUsedGB == nil || *stats.RAMUsedGB != 12 || *stats.RAMTotalGB != 16 || *stats.RAMPercent != 75 {
		t.Errorf("ram = %v/%v/%v", stats.RAMUsedGB, stats.RAMTotalGB, stats.RAMPercent)
	}
	if len(stats.TopByMemory) != 3 || stats.TopByMemory[0].Name != "editor" {
		t.Errorf("TopByMemory = %+v", stats.TopByMemory)
	}
	if len(stats.TopByCPU) != 3 {
		t.Errorf("TopByCPU = %+v", stats.TopByCPU)
	}
	if stats.BrowserName != "chrome" || stats.BrowserProcessCount != 2 {
		t.Errorf("browser = %s x%d", stats.BrowserName, stats.BrowserProcessCount)
	}
	if stats.BrowserRAMGB != 0.39 {
		t.Errorf("BrowserRAMGB = %v, want 0.39", stats.BrowserRAMGB)
	}
	if stats.BrowserProcesses[0].PID != 1 {
		t.Errorf("browser processes should be largest first: %+v", stats.BrowserProcesses)
	}
}

func TestCleanMemory(t *testing.T) {
	h := &harness{now: time.Unix(0, 0)}
	svc := h.service(t)
	res := svc.CleanMemory([]int32{5, 99, 7})
	if res.Requested != 3 || res.Trimmed != 2 || res.Skipped != 1 {
		t.Errorf("res = %+v", res)
	}
	if len(h.trimmed) != 2 {
		t.Errorf("trimmed = %v", h.trimmed)
	}
}

func TestOptimizeBatch(t *testing.T) {
	var gameKills, chatKills, explorerKills int
	h := &harness{
		now: time.Unix(0, 0),
		table: table{
			{pid: 1, name: "game", exe: "/opt/game", rss: 900 * mb, killed: &gameKills},
			{pid: 2, name: "chat", exe: "/opt/chat", rss: 500 * mb, killed: &chatKills},
			{pid: 3, name: "explorer", exe: "/opt/explorer", rss: 100 * mb, killed: &explorerKills},
			{pid: 4, name: "music", exe: "/opt/music", rss: 50 * mb},
		},
	}
	svc := h.service(t)
	candidates := svc.Candidates()
	if len(candidates) != 4 {
		t.Fatalf("candidates = %+v", candidates)
	}

	var asked []string
	res := svc.OptimizeBatch(candidates, func(c model.OptimizationCandidate) Decision {
		asked = append(asked, c.Name)
		switch c.Name {
		case "chat":
			return Skip
		case "music":
			return Stop
		}
		return Close
	})

	if gameKills != 1 || chatKills != 0 || explorerKills != 0 {
		t.Errorf("kills game=%d chat=%d explorer=%d", gameKills, chatKills, explorerKills)
	}
	if len(res.Closed) != 1 || res.Closed[0].Name != "game" || res.Closed[0].Closed != 1 {
		t.Errorf("Closed = %+v", res.Closed)
	}
	if len(res.Skipped) != 2 || res.Skipped[0] != "chat" || res.Skipped[1] != "explorer" {
		t.Errorf("Skipped = %v", res.Skipped)
	}
	if !res.Stopped {
		t.Error("Stopped = false")
	}
	for _, name := range asked {
		if name == "explorer" {
			t.Error("decider was asked about a critical process")
		}
	}
}

func TestStartupAndTempWithoutSources(t *testing.T) {
	h := &harness{now: time.Unix(0, 0)}
	svc := h.service(t)
	if apps := svc.StartupApps(); apps == nil || len(apps) != 0 {
		t.Errorf("StartupApps = %#v", apps)
	}
	if res := svc.CleanTempFiles(); res.FilesDeleted != 0 {
		t.Errorf("CleanTempFiles = %+v", res)
	}
}
