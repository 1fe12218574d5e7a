package monitor

import (
	"cmp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"lightmon/internal/system"
)

// Filter keeps processes whose name contains text, ignoring case, or whose
// decimal pid contains text. Empty text keeps everything.
// The result is a new slice; an empty input stays empty, never nil.
func Filter(procs []system.Process, text string) []system.Process {
	if text == "" {
		if procs == nil {
			return []system.Process{}
		}
		return slices.Clone(procs)
	}
	needle := strings.ToLower(text)
	return lo.Filter(procs, func(p system.Process, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strconv.FormatUint(uint64(p.PID), 10), text)
	})
}

// Sort orders procs in place by key descending, ties by pid ascending
func Sort(procs []system.Process, key SortKey) {
	sort.Slice(procs, func(i, j int) bool {
		a, b := &procs[i], &procs[j]

		var c int
		switch key {
		case SortByMemory:
			c = cmp.Compare(b.MemoryBytes, a.MemoryBytes)
		default:
			c = cmp.Compare(b.CPUPercent, a.CPUPercent)
		}
		if c != 0 {
			return c < 0
		}
		return a.PID < b.PID
	})
}

// Visible is the filtered, sorted view of procs. procs is not modified.
func Visible(procs []system.Process, text string, key SortKey) []system.Process {
	out := Filter(procs, text)
	Sort(out, key)
	return out
}
