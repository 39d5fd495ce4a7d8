package optimize

import (
	"sync"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
)

// DriveLocks is a set of drives with an operation in flight.
type DriveLocks struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewDriveLocks() *DriveLocks {
	return &DriveLocks{busy: map[string]struct{}{}}
}

// TryAcquire marks letter busy, or reports false if it already is.
func (l *DriveLocks) TryAcquire(letter string) bool {
	k := drives.Normalize(letter)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[k]; ok {
		return false
	}
	l.busy[k] = struct{}{}
	return true
}

func (l *DriveLocks) Release(letter string) {
	l.mu.Lock()
	delete(l.busy, drives.Normalize(letter))
	l.mu.Unlock()
}

func (l *DriveLocks) Busy(letter string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[drives.Normalize(letter)]
	return ok
}
