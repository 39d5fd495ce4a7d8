package procs

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/sampler"
)

const (
	MinTop = 1
	MaxTop = 50

	exeCacheSize = 2048
)

type exeKey struct {
	pid     int32
	created int64
}

// Inventory ranks processes by CPU and groups user-installed ones into
// optimization candidates. The top list and the candidate list keep
// separate CPU baselines so polling one does not skew the other.
type Inventory struct {
	table    Table
	catalog  *Catalog
	osDirs   []string
	foldCase bool
	logger   *slog.Logger

	top        *sampler.DeltaTracker
	candidates *sampler.DeltaTracker
	exeCache   *lru.Cache[exeKey, string]
}

type Option func(*inventoryOptions)

type inventoryOptions struct {
	now      func() time.Time
	cores    int
	osDirs   []string
	foldCase bool
	logger   *slog.Logger
}

func WithClock(now func() time.Time) Option { return func(o *inventoryOptions) { o.now = now } }
func WithCores(n int) Option { return func(o *inventoryOptions) { o.cores = n } }
func WithLogger(l *slog.Logger) Option { return func(o *inventoryOptions) { o.logger = l } }

// WithOSDirs replaces the directories whose executables count as part of
// the operating system. foldCase compares paths case-insensitively.
func WithOSDirs(foldCase bool, dirs ...string) Option {
	return func(o *inventoryOptions) {
		o.osDirs = dirs
		o.foldCase = foldCase
	}
}

func NewInventory(table Table, catalog *Catalog, opts ...Option) *Inventory {
	o := inventoryOptions{
		now:      time.Now,
		osDirs:   SystemDirs(),
		foldCase: runtime.GOOS == "windows",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cores <= 0 {
		o.cores = sampler.LogicalCores()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	cache, _ := lru.New[exeKey, string](exeCacheSize)
	return &Inventory{
		table:      table,
		catalog:    catalog,
		osDirs:     o.osDirs,
		foldCase:   o.foldCase,
		logger:     o.logger,
		top:        sampler.NewDeltaTracker(o.now, o.cores),
		candidates: sampler.NewDeltaTracker(o.now, o.cores),
		exeCache:   cache,
	}
}

func (inv *Inventory) Catalog() *Catalog { return inv.catalog }

// Top returns up to n processes ordered by CPU percent descending, then
// memory descending. n is clamped to [MinTop, MaxTop]. The first call
// after start reports every CPU figure as unknown; unknown sorts last.
func (inv *Inventory) Top(n int) []model.ProcessUsage {
	n = ClampTop(n)

	handles, err := inv.table.Processes()
	if err != nil {
		inv.logger.Warn("process enumeration failed", slog.Any("error", err))
		return []model.ProcessUsage{}
	}
	rates := inv.top.Observe(cpuTimes(handles))

	rows := make([]model.ProcessUsage, 0, len(handles))
	for _, h := range handles {
		name, err := h.Name()
		if err != nil || name == "" {
			continue
		}
		ws, err := h.WorkingSet()
		if err != nil {
			continue
		}
		rows = append(rows, model.ProcessUsage{
			PID:        h.PID(),
			Name:       name,
			CPUPercent: rates[h.PID()],
			MemoryMB:   model.Round2(float64(ws) / (1024 * 1024)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := cpuOrUnknown(rows[i].CPUPercent), cpuOrUnknown(rows[j].CPUPercent)
		if ci != cj {
			return ci > cj
		}
		return rows[i].MemoryMB > rows[j].MemoryMB
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Candidates groups processes whose executable lives outside the OS
// directories by name, summing memory and CPU. Processes without a
// readable executable path are skipped. Ordered by memory descending.
func (inv *Inventory) Candidates() []model.OptimizationCandidate {
	handles, err := inv.table.Processes()
	if err != nil {
		inv.logger.Warn("process enumeration failed", slog.Any("error", err))
		return []model.OptimizationCandidate{}
	}
	rates := inv.candidates.Observe(cpuTimes(handles))

	type group struct {
		name   string
		count  int
		mem    uint64
		cpu    float64
		hasCPU bool
	}
	groups := map[string]*group{}
	for _, h := range handles {
		exe := inv.exePath(h)
		if exe == "" || inv.isSystemPath(exe) {
			continue
		}
		name, err := h.Name()
		if err != nil || name == "" {
			continue
		}
		k := key(name)
		g, ok := groups[k]
		if !ok {
			g = &group{name: name}
			groups[k] = g
		}
		g.count++
		if ws, err := h.WorkingSet(); err == nil {
			g.mem += ws
		}
		if r := rates[h.PID()]; r != nil {
			g.cpu += *r
			g.hasCPU = true
		}
	}

	out := make([]model.OptimizationCandidate, 0, len(groups))
	for _, g := range groups {
		memMB := model.Round2(float64(g.mem) / (1024 * 1024))
		c := model.OptimizationCandidate{
			Name:         g.name,
			Reason:       externalReason,
			Description:  inv.catalog.Describe(g.name),
			Savings:      estimateSavings(memMB),
			ProcessCount: g.count,
			MemoryMB:     memMB,
			Critical:     inv.catalog.IsCritical(g.name),
		}
		if g.hasCPU {
			c.CPUPercent = model.Float(model.Round2(g.cpu))
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MemoryMB != out[j].MemoryMB {
			return out[i].MemoryMB > out[j].MemoryMB
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// ByName lists every readable process named name, largest first. CPU
// figures are left unknown.
func (inv *Inventory) ByName(name string) []model.ProcessUsage {
	handles, err := inv.table.Processes()
	if err != nil {
		return []model.ProcessUsage{}
	}
	out := []model.ProcessUsage{}
	for _, h := range handles {
		n, err := h.Name()
		if err != nil || !strings.EqualFold(n, name) {
			continue
		}
		ws, err := h.WorkingSet()
		if err != nil {
			continue
		}
		out = append(out, model.ProcessUsage{
			PID:      h.PID(),
			Name:     n,
			MemoryMB: model.Round2(float64(ws) / (1024 * 1024)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MemoryMB > out[j].MemoryMB })
	return out
}

// exePath caches by (pid, create time) so a recycled pid misses.
func (inv *Inventory) exePath(h Handle) string {
	created, cerr := h.CreateTime()
	k := exeKey{pid: h.PID(), created: created}
	if cerr == nil {
		if p, ok := inv.exeCache.Get(k); ok {
			return p
		}
	}
	p, err := h.Exe()
	if err != nil {
		return ""
	}
	if cerr == nil {
		inv.exeCache.Add(k, p)
	}
	return p
}

func (inv *Inventory) isSystemPath(exe string) bool {
	for _, dir := range inv.osDirs {
		if underDir(exe, dir, inv.foldCase) {
			return true
		}
	}
	return false
}

func underDir(path, dir string, fold bool) bool {
	if dir == "" {
		return false
	}
	p, d := filepath.Clean(path), filepath.Clean(dir)
	if fold {
		p, d = strings.ToLower(p), strings.ToLower(d)
	}
	if p == d {
		return true
	}
	if !strings.HasSuffix(d, string(filepath.Separator)) {
		d += string(filepath.Separator)
	}
	return strings.HasPrefix(p, d)
}

func cpuTimes(handles []Handle) map[int32]time.Duration {
	times := make(map[int32]time.Duration, len(handles))
	for _, h := range handles {
		if t, err := h.CPUTime(); err == nil {
			times[h.PID()] = t
		}
	}
	return times
}

func cpuOrUnknown(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func estimateSavings(memMB float64) string {
	if memMB < 1 {
		return "Frees little memory"
	}
	return "Frees about " + formatMB(memMB) + " of RAM"
}

func formatMB(mb float64) string {
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.0f MB", mb)
}

// ClampTop bounds a requested top-list size.
func ClampTop(n int) int {
	if n < MinTop {
		return MinTop
	}
	if n > MaxTop {
		return MaxTop
	}
	return n
}
