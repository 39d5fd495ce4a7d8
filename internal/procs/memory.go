package procs

import (
	"errors"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// TrimFunc trims one process's working set.
type TrimFunc func(pid int32) error

// TrimAll applies trim to every pid. Pids that refuse, or a platform that
// cannot trim at all, count as skipped.
func TrimAll(pids []int32, trim TrimFunc) model.MemoryCleanResult {
	res := model.MemoryCleanResult{Requested: len(pids)}
	for _, pid := range pids {
		err := trim(pid)
		if errors.Is(err, errors.ErrUnsupported) {
			res.Skipped += len(pids) - res.Trimmed - res.Skipped
			break
		}
		if err != nil {
			res.Skipped++
			continue
		}
		res.Trimmed++
	}
	return res
}
