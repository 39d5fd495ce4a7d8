package diagnostics

import "github.com/Dicklesworthstone/sysoptimizer/internal/model"

// Decision is a caller's answer for one candidate in a batch.
type Decision int

const (
	Close Decision = iota
	Skip
	Stop
)

// Decider is asked about every non-critical candidate in turn.
type Decider func(model.OptimizationCandidate) Decision

// CloseAll is the Decider for an unattended batch.
func CloseAll(model.OptimizationCandidate) Decision { return Close }

// OptimizeBatch closes running candidates the decider approves, with a
// snapshot taken on either side. Critical candidates are always skipped
// and the decider is not consulted for them.
func (s *Service) OptimizeBatch(candidates []model.OptimizationCandidate, decide Decider) model.PrePlayResult {
	if decide == nil {
		decide = CloseAll
	}
	res := model.PrePlayResult{
		Before:  s.Snapshot(),
		Closed:  []model.ProcessCloseResult{},
		Skipped: []string{},
	}
	for _, c := range candidates {
		if !c.Running() {
			continue
		}
		if c.Critical || s.IsCritical(c.Name) {
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}
		d := decide(c)
		if d == Stop {
			res.Stopped = true
			break
		}
		if d == Skip {
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}
		res.Closed = append(res.Closed, s.CloseByName(c.Name))
	}
	res.After = s.Snapshot()
	return res
}
