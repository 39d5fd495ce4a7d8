package sampler

import (
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// CPUTimeFunc returns the cumulative processor time consumed by every
// process the caller can see.
type CPUTimeFunc func() (time.Duration, error)

// MemoryFunc returns total and available physical memory in bytes.
type MemoryFunc func() (total, available uint64, err error)

// Sampler computes CPU and memory figures from cumulative OS counters.
// CPU usage needs two readings, so the previous one is kept as a baseline;
// the first call after New or Reset has nothing to compare against.
type Sampler struct {
	now     func() time.Time
	cpuTime CPUTimeFunc
	memory  MemoryFunc
	cores   int
	logger  *slog.Logger

	mu        sync.Mutex
	lastAt    time.Time
	lastTotal time.Duration
	primed    bool
}

// Option configures a Sampler.
type Option func(*Sampler)

func WithClock(now func() time.Time) Option { return func(s *Sampler) { s.now = now } }
func WithCPUTime(fn CPUTimeFunc) Option { return func(s *Sampler) { s.cpuTime = fn } }
func WithMemory(fn MemoryFunc) Option { return func(s *Sampler) { s.memory = fn } }
func WithCores(n int) Option { return func(s *Sampler) { s.cores = n } }
func WithLogger(l *slog.Logger) Option { return func(s *Sampler) { s.logger = l } }

// New returns a Sampler reading the live process table through gopsutil.
func New(opts ...Option) *Sampler {
	s := &Sampler{
		now:     time.Now,
		cpuTime: ProcessCPUTime,
		memory:  VirtualMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cores <= 0 {
		s.cores = LogicalCores()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Cores is the logical core count used to normalise CPU rates.
func (s *Sampler) Cores() int { return s.cores }

// SampleCPU returns machine-wide CPU usage since the previous call, or nil
// when no rate can be computed yet.
func (s *Sampler) SampleCPU() *float64 {
	now := s.now()
	total, err := s.cpuTime()
	if err != nil {
		s.logger.Debug("cpu time unavailable", slog.Any("error", err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.primed {
		s.lastAt, s.lastTotal, s.primed = now, total, true
		return nil
	}

	elapsed := now.Sub(s.lastAt)
	if elapsed <= 0 {
		return nil
	}

	pct, ok := Rate(total-s.lastTotal, elapsed, s.cores)
	s.lastAt, s.lastTotal = now, total
	if !ok {
		return nil
	}
	return &pct
}

// Reset drops the CPU baseline.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primed = false
	s.lastAt, s.lastTotal = time.Time{}, 0
}

// Memory is a physical memory reading in GiB.
type Memory struct {
	TotalGB     float64
	AvailableGB float64
}

// UsedPercent derives RAM usage from total and available memory.
func (m Memory) UsedPercent() *float64 {
	if m.TotalGB <= 0 {
		return nil
	}
	return model.Float(model.Round2(100 - m.AvailableGB/m.TotalGB*100))
}

// SampleMemory reads physical memory; ok is false when the OS query fails.
func (s *Sampler) SampleMemory() (Memory, bool) {
	total, avail, err := s.memory()
	if err != nil {
		s.logger.Debug("memory counters unavailable", slog.Any("error", err))
		return Memory{}, false
	}
	return Memory{
		TotalGB:     model.Round2(model.BytesToGB(total)),
		AvailableGB: model.Round2(model.BytesToGB(avail)),
	}, true
}

// ProcessCPUTime sums user and system time over every enumerable process.
// Processes that vanish or deny access are skipped.
func ProcessCPUTime() (time.Duration, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, p := range procs {
		t, err := p.Times()
		if err != nil || t == nil {
			continue
		}
		total += Seconds(t.User + t.System)
	}
	return total, nil
}

// VirtualMemory reads physical memory through gopsutil.
func VirtualMemory() (uint64, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Total, vm.Available, nil
}

// LogicalCores reports the logical CPU count, falling back to the Go runtime.
func LogicalCores() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Seconds converts fractional seconds to a Duration.
func Seconds(v float64) time.Duration { return time.Duration(v * float64(time.Second)) }
