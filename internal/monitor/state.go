package monitor

import (
	"time"

	"lightmon/internal/system"
)

type Screen int

const (
	ScreenOverview Screen = iota
	ScreenProcesses
	ScreenSettings
)

// Screens in tab order
var Screens = []Screen{ScreenOverview, ScreenProcesses, ScreenSettings}

func (s Screen) String() string {
	switch s {
	case ScreenOverview:
		return "Overview"
	case ScreenProcesses:
		return "Processes"
	case ScreenSettings:
		return "Settings"
	}
	return "Unknown"
}

func (s Screen) valid() bool {
	return s >= ScreenOverview && s <= ScreenSettings
}

// Next returns the screen after s, wrapping around
func (s Screen) Next() Screen {
	return Screens[(int(s)+1)%len(Screens)]
}

type SortKey int

const (
	SortByCPU SortKey = iota
	SortByMemory
)

func (k SortKey) String() string {
	if k == SortByMemory {
		return "Memory"
	}
	return "CPU"
}

// ToastDuration is how long a transient message stays visible
const ToastDuration = 3 * time.Second

// Toast is a transient notification
type Toast struct {
	Text    string
	Error   bool
	Expires time.Time
}

// State is an immutable copy of everything the presentation renders.
// Processes is shared between copies and must not be modified.
type State struct {
	Screen       Screen
	SortKey      SortKey
	FilterText   string
	SelectedPID  uint32
	HasSelection bool

	DarkMode        bool
	RefreshInterval uint32
	IntervalInput   string

	CPUPercent  float64
	MemoryUsed  uint64
	MemoryTotal uint64
	DiskUsed    uint64
	DiskTotal   uint64

	Processes      []system.Process
	TotalProcesses int

	Toast     *Toast
	Exporting bool
	UpdatedAt time.Time
}

// MemoryPercent is used over total, 0 when unknown
func (s State) MemoryPercent() float64 {
	return system.Snapshot{MemoryUsed: s.MemoryUsed, MemoryTotal: s.MemoryTotal}.MemoryPercent()
}

// DiskPercent is used over total, 0 when unknown
func (s State) DiskPercent() float64 {
	return system.Snapshot{DiskUsed: s.DiskUsed, DiskTotal: s.DiskTotal}.DiskPercent()
}

// Selected returns the selected process if it is still visible
func (s State) Selected() (system.Process, bool) {
	if !s.HasSelection {
		return system.Process{}, false
	}
	for _, p := range s.Processes {
		if p.PID == s.SelectedPID {
			return p, true
		}
	}
	return system.Process{}, false
}
