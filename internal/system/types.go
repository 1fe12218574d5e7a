package system

import (
	"context"
	"math"
	"time"
)

// Source produces point-in-time readings of the local machine
type Source interface {
	// Snapshot never fails; unreadable fields are zero or empty
	Snapshot(ctx context.Context) Snapshot
	// Describe returns details of one live process
	Describe(ctx context.Context, pid uint32) (ProcessDetail, error)
}

// Snapshot is an immutable reading of CPU, memory, disk and the process table
type Snapshot struct {
	CPUPercent  float64   `json:"cpu_percent"`
	MemoryUsed  uint64    `json:"memory_used"`
	MemoryTotal uint64    `json:"memory_total"`
	DiskUsed    uint64    `json:"disk_used"`
	DiskTotal   uint64    `json:"disk_total"`
	Processes   []Process `json:"processes"`
	TakenAt     time.Time `json:"taken_at"`
}

// Process is one row of the process table
type Process struct {
	PID         uint32  `json:"pid"`
	Name        string  `json:"name"`
	CPUPercent  float64 `json:"cpu_percent"`
	MemoryBytes uint64  `json:"memory_bytes"`
}

// ProcessDetail backs the selected-process panel
type ProcessDetail struct {
	Process
	Status       string    `json:"status"`
	Username     string    `json:"username"`
	VirtualBytes uint64    `json:"virtual_bytes"`
	CreateTime   time.Time `json:"create_time,omitempty"`
}

// HostInfo represents general system information
type HostInfo struct {
	Host   string `json:"host"`
	OS     string `json:"os"`
	Kernel string `json:"kernel"`
	CPU    string `json:"cpu"`
}

// Clamp returns a copy whose used counters never exceed their totals and
// whose percentages are finite and non-negative
func (s Snapshot) Clamp() Snapshot {
	if s.MemoryUsed > s.MemoryTotal {
		s.MemoryUsed = s.MemoryTotal
	}
	if s.DiskUsed > s.DiskTotal {
		s.DiskUsed = s.DiskTotal
	}
	s.CPUPercent = clampPercent(s.CPUPercent)
	if len(s.Processes) > 0 {
		procs := make([]Process, len(s.Processes))
		for i, p := range s.Processes {
			p.CPUPercent = clampPercent(p.CPUPercent)
			procs[i] = p
		}
		s.Processes = procs
	}
	return s
}

// MemoryPercent is used over total, 0 when the total is unknown
func (s Snapshot) MemoryPercent() float64 {
	return percentOf(s.MemoryUsed, s.MemoryTotal)
}

// DiskPercent is used over total, 0 when the total is unknown
func (s Snapshot) DiskPercent() float64 {
	return percentOf(s.DiskUsed, s.DiskTotal)
}

func percentOf(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return math.Min(float64(used)/float64(total)*100, 100)
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
