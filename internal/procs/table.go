// Package procs enumerates, ranks, groups and terminates processes.
package procs

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/sysoptimizer/internal/sampler"
)

// Handle is one entry of the process table. Every accessor may fail at
// any time: the process can exit or deny access between calls.
type Handle interface {
	PID() int32
	Name() (string, error)
	Exe() (string, error)
	CPUTime() (time.Duration, error)
	WorkingSet() (uint64, error)
	CreateTime() (int64, error)
	KillTree() error
}

// Table enumerates live processes.
type Table interface {
	Processes() ([]Handle, error)
}

// GopsutilTable reads the OS process table through gopsutil.
type GopsutilTable struct{}

func (GopsutilTable) Processes() ([]Handle, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Handle, 0, len(procs))
	for _, p := range procs {
		out = append(out, gopsutilHandle{p: p})
	}
	return out, nil
}

type gopsutilHandle struct {
	p *process.Process
}

func (h gopsutilHandle) PID() int32 { return h.p.Pid }

// Name drops a trailing ".exe" so names compare the same on every OS.
func (h gopsutilHandle) Name() (string, error) {
	name, err := h.p.Name()
	if err != nil {
		return "", err
	}
	return trimExeSuffix(name), nil
}

func (h gopsutilHandle) Exe() (string, error) { return h.p.Exe() }

func (h gopsutilHandle) CPUTime() (time.Duration, error) {
	t, err := h.p.Times()
	if err != nil {
		return 0, err
	}
	return sampler.Seconds(t.User + t.System), nil
}

func (h gopsutilHandle) WorkingSet() (uint64, error) {
	mi, err := h.p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mi.RSS, nil
}

func (h gopsutilHandle) CreateTime() (int64, error) { return h.p.CreateTime() }

// KillTree snapshots the descendants first, since they are reparented
// once the root dies, then kills the root followed by each descendant.
// Only the root's failure is reported.
func (h gopsutilHandle) KillTree() error {
	descendants := collectDescendants(h.p, 0)
	if err := h.p.Kill(); err != nil {
		return err
	}
	for _, d := range descendants {
		_ = d.Kill()
	}
	return nil
}

const maxTreeDepth = 32

func collectDescendants(p *process.Process, depth int) []*process.Process {
	if depth >= maxTreeDepth {
		return nil
	}
	children, err := p.Children()
	if err != nil {
		return nil
	}
	var out []*process.Process
	for _, c := range children {
		out = append(out, c)
		out = append(out, collectDescendants(c, depth+1)...)
	}
	return out
}

func trimExeSuffix(name string) string {
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		return name[:len(name)-4]
	}
	return name
}
