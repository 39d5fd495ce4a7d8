package sampler

import (
	"sync"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Rate converts a CPU-time delta over a wall-clock window into a share of
// total machine capacity, in percent rounded to two places. ok is false
// for an empty window or a negative delta.
func Rate(delta, elapsed time.Duration, cores int) (pct float64, ok bool) {
	if elapsed <= 0 || cores <= 0 {
		return 0, false
	}
	raw := delta.Seconds() / elapsed.Seconds() / float64(cores) * 100
	if raw < 0 {
		return 0, false
	}
	return model.Round2(raw), true
}

// DeltaTracker computes per-process CPU rates between consecutive polls,
// keyed by pid. Every Observe replaces the stored map wholesale so exited
// processes drop out.
type DeltaTracker struct {
	now   func() time.Time
	cores int

	mu     sync.Mutex
	lastAt time.Time
	last   map[int32]time.Duration
}

// NewDeltaTracker returns a tracker; a nil clock means time.Now.
func NewDeltaTracker(now func() time.Time, cores int) *DeltaTracker {
	if now == nil {
		now = time.Now
	}
	return &DeltaTracker{now: now, cores: cores, last: map[int32]time.Duration{}}
}

// Observe records cumulative CPU times and returns each pid's rate since
// the previous poll. A pid seen for the first time maps to nil.
func (d *DeltaTracker) Observe(times map[int32]time.Duration) map[int32]*float64 {
	now := d.now()
	out := make(map[int32]*float64, len(times))
	next := make(map[int32]time.Duration, len(times))

	d.mu.Lock()
	defer d.mu.Unlock()

	var elapsed time.Duration
	if !d.lastAt.IsZero() {
		elapsed = now.Sub(d.lastAt)
	}

	for pid, cur := range times {
		next[pid] = cur
		out[pid] = nil
		if elapsed <= 0 {
			continue
		}
		prev, seen := d.last[pid]
		if !seen {
			continue
		}
		if pct, ok := Rate(cur-prev, elapsed, d.cores); ok {
			out[pid] = &pct
		}
	}

	d.last = next
	d.lastAt = now
	return out
}
