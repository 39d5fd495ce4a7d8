// Package diagnostics is the snapshot-pull API the CLI and monitor use:
// host snapshot, process lists, startup entries, memory view and the
// cleanup actions that go with them.
package diagnostics

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/health"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/procs"
	"github.com/Dicklesworthstone/sysoptimizer/internal/sampler"
)

const DefaultBrowser = "chrome"

// StartupLister lists autorun entries.
type StartupLister interface {
	List() []model.StartupApp
}

// TempCleaner empties the OS temp directories.
type TempCleaner interface {
	PurgeAllTemp() model.TempCleanupResult
}

// Config wires a Service. Nil fields fall back to the live OS sources.
type Config struct {
	Sampler    *sampler.Sampler
	Drives     *drives.Inventory
	Processes  *procs.Inventory
	Terminator *procs.Terminator
	Startup    StartupLister
	Temp       TempCleaner
	Trim       procs.TrimFunc
	Browser    string
	Clock      func() time.Time
	Logger     *slog.Logger
}

type Service struct {
	sampler *sampler.Sampler
	drives  *drives.Inventory
	procs   *procs.Inventory
	term    *procs.Terminator
	startup StartupLister
	temp    TempCleaner
	trim    procs.TrimFunc
	browser string
	now     func() time.Time
	logger  *slog.Logger
}

func New(cfg Config) *Service {
	s := &Service{
		sampler: cfg.Sampler,
		drives:  cfg.Drives,
		procs:   cfg.Processes,
		term:    cfg.Terminator,
		startup: cfg.Startup,
		temp:    cfg.Temp,
		trim:    cfg.Trim,
		browser: cfg.Browser,
		now:     cfg.Clock,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sampler == nil {
		s.sampler = sampler.New(sampler.WithLogger(s.logger))
	}
	if s.drives == nil {
		s.drives = drives.New(nil, s.logger)
	}
	if s.procs == nil {
		s.procs = procs.NewInventory(procs.GopsutilTable{}, nil, procs.WithLogger(s.logger))
	}
	if s.term == nil {
		s.term = procs.NewTerminator(procs.GopsutilTable{}, s.procs.Catalog(), s.logger)
	}
	if s.trim == nil {
		s.trim = procs.TrimWorkingSet
	}
	if s.browser == "" {
		s.browser = DefaultBrowser
	}
	return s
}

// Snapshot samples CPU, memory and system-drive free space and scores
// the result. Metrics the OS will not report are left nil.
func (s *Service) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Timestamp:  s.now(),
		CPUPercent: s.sampler.SampleCPU(),
	}
	if mem, ok := s.sampler.SampleMemory(); ok {
		snap.RAMPercent = mem.UsedPercent()
		snap.RAMAvailableGB = model.Float(model.Round2(mem.AvailableGB))
	}
	if d, err := s.drives.Get(drives.SystemDrive()); err == nil && d.TotalBytes > 0 {
		snap.DiskFreePercent = model.Float(model.Round2(d.FreePercent()))
		snap.DiskFreeGB = model.Float(model.Round2(d.FreeGB()))
	}
	snap.HealthScore, snap.Status = health.Score(snap.CPUPercent, snap.RAMPercent, snap.DiskFreePercent)
	return snap
}

func (s *Service) Recommendations(snap model.Snapshot) []model.Recommendation {
	return health.Recommendations(snap)
}

func (s *Service) TopProcesses(n int) []model.ProcessUsage { return s.procs.Top(n) }

func (s *Service) StartupApps() []model.StartupApp {
	if s.startup == nil {
		return []model.StartupApp{}
	}
	return s.startup.List()
}

func (s *Service) Candidates() []model.OptimizationCandidate { return s.procs.Candidates() }

func (s *Service) CloseByName(name string) model.ProcessCloseResult {
	return s.term.CloseByName(name)
}

// IsCritical reports whether name is protected from termination.
func (s *Service) IsCritical(name string) bool { return s.procs.Catalog().IsCritical(name) }

// MemoryStats reports system memory, the top n processes ordered both by
// memory and by CPU, and an aggregate for the configured browser.
func (s *Service) MemoryStats(n int) model.MemoryStats {
	stats := model.MemoryStats{
		Timestamp:   s.now(),
		CPUPercent:  s.sampler.SampleCPU(),
		BrowserName: s.browser,
	}
	if mem, ok := s.sampler.SampleMemory(); ok && mem.TotalGB > 0 {
		used := model.Round2(mem.TotalGB - mem.AvailableGB)
		stats.RAMUsedGB = model.Float(used)
		stats.RAMTotalGB = model.Float(model.Round2(mem.TotalGB))
		stats.RAMPercent = model.Float(model.Round2(used / mem.TotalGB * 100))
	}

	top := s.procs.Top(n)
	stats.TopByMemory = append([]model.ProcessUsage(nil), top...)
	sort.SliceStable(stats.TopByMemory, func(i, j int) bool {
		return stats.TopByMemory[i].MemoryMB > stats.TopByMemory[j].MemoryMB
	})
	stats.TopByCPU = top

	cpuByPID := make(map[int32]*float64, len(top))
	for _, p := range top {
		cpuByPID[p.PID] = p.CPUPercent
	}
	var browserMB float64
	stats.BrowserProcesses = s.procs.ByName(s.browser)
	for i := range stats.BrowserProcesses {
		p := &stats.BrowserProcesses[i]
		p.CPUPercent = cpuByPID[p.PID]
		browserMB += p.MemoryMB
	}
	stats.BrowserProcessCount = len(stats.BrowserProcesses)
	stats.BrowserRAMGB = model.Round2(browserMB / 1024)
	return stats
}

// CleanMemory asks the OS to trim the working set of each pid.
func (s *Service) CleanMemory(pids []int32) model.MemoryCleanResult {
	res := procs.TrimAll(pids, s.trim)
	s.logger.Info("memory trim finished", slog.Int("requested", res.Requested), slog.Int("trimmed", res.Trimmed), slog.Int("skipped", res.Skipped))
	return res
}

// CleanTempFiles empties every OS temp directory.
func (s *Service) CleanTempFiles() model.TempCleanupResult {
	if s.temp == nil {
		return model.TempCleanupResult{}
	}
	return s.temp.PurgeAllTemp()
}
