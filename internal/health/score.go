// Package health turns resource figures into a 0-100 score, a status tier
// and a short list of recommendations.
package health

import "github.com/Dicklesworthstone/sysoptimizer/internal/model"

// tier is one penalty step. For "at least" metrics the penalty applies when
// value >= limit; for "at most" metrics when value <= limit.
type tier struct {
	limit   float64
	penalty int
}

// Tiers are ordered worst first; the first match wins.
var (
	cpuTiers  = []tier{{90, 30}, {80, 20}, {70, 10}}
	ramTiers  = []tier{{95, 30}, {85, 20}, {75, 10}}
	diskTiers = []tier{{10, 30}, {15, 20}, {20, 10}}
)

const (
	okFloor      = 70
	warningFloor = 40
)

// Score maps CPU%, RAM% and free-disk% to a score and status. A nil metric
// adds no penalty; all three nil yields (0, StatusUnknown).
func Score(cpu, ram, diskFree *float64) (int, model.HealthStatus) {
	if cpu == nil && ram == nil && diskFree == nil {
		return 0, model.StatusUnknown
	}

	score := 100
	score -= atLeast(cpu, cpuTiers)
	score -= atLeast(ram, ramTiers)
	score -= atMost(diskFree, diskTiers)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, StatusFor(score)
}

// StatusFor is the status tier of a known score.
func StatusFor(score int) model.HealthStatus {
	switch {
	case score >= okFloor:
		return model.StatusOk
	case score >= warningFloor:
		return model.StatusWarning
	default:
		return model.StatusCritical
	}
}

func atLeast(v *float64, tiers []tier) int {
	if v == nil {
		return 0
	}
	for _, t := range tiers {
		if *v >= t.limit {
			return t.penalty
		}
	}
	return 0
}

func atMost(v *float64, tiers []tier) int {
	if v == nil {
		return 0
	}
	for _, t := range tiers {
		if *v <= t.limit {
			return t.penalty
		}
	}
	return 0
}
