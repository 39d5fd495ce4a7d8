package model

import "time"

// ProcessUsage is one row of the top-process table. PID is only stable
// between two consecutive polls; the OS reuses ids after exit.
type ProcessUsage struct {
	PID        int32    `json:"pid"`
	Name       string   `json:"name"`
	CPUPercent *float64 `json:"cpu_percent"`
	MemoryMB   float64  `json:"memory_mb"`
}

// OptimizationCandidate aggregates every running process sharing a name.
type OptimizationCandidate struct {
	Name         string   `json:"name"`
	Reason       string   `json:"reason"`
	Description  string   `json:"description"`
	Savings      string   `json:"savings"`
	ProcessCount int      `json:"process_count"`
	MemoryMB     float64  `json:"memory_mb"`
	CPUPercent   *float64 `json:"cpu_percent"`
	Critical     bool     `json:"critical"`
}

// Running reports whether at least one process backs the candidate.
func (c OptimizationCandidate) Running() bool { return c.ProcessCount > 0 }

// ProcessCloseResult is the outcome of closing every process with a name.
type ProcessCloseResult struct {
	Name   string `json:"name"`
	Closed int    `json:"closed"`
	Failed int    `json:"failed"`
}

// MemoryStats is the detailed memory view, including an aggregate for a
// single browser executable.
type MemoryStats struct {
	Timestamp           time.Time      `json:"timestamp"`
	CPUPercent          *float64       `json:"cpu_usage_percent"`
	RAMUsedGB           *float64       `json:"ram_used_gb"`
	RAMTotalGB          *float64       `json:"ram_total_gb"`
	RAMPercent          *float64       `json:"ram_usage_percent"`
	TopByMemory         []ProcessUsage `json:"top_ram_processes"`
	TopByCPU            []ProcessUsage `json:"top_cpu_processes"`
	BrowserName         string         `json:"browser_name"`
	BrowserProcessCount int            `json:"browser_process_count"`
	BrowserRAMGB        float64        `json:"browser_ram_gb"`
	BrowserProcesses    []ProcessUsage `json:"browser_processes"`
}

// MemoryCleanResult summarises a working-set trim request.
type MemoryCleanResult struct {
	Requested int `json:"requested"`
	Trimmed   int `json:"trimmed"`
	Skipped   int `json:"skipped"`
}

// StartupApp is one autorun entry.
type StartupApp struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Command  string `json:"command"`
}

// PrePlayResult captures host state around a batch of process closes.
// Stopped is set when the caller ended the batch early.
type PrePlayResult struct {
	Before  Snapshot             `json:"before"`
	After   Snapshot             `json:"after"`
	Closed  []ProcessCloseResult `json:"closed"`
	Skipped []string             `json:"skipped"`
	Stopped bool                 `json:"stopped"`
}
