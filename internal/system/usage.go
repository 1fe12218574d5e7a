package system

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// DefaultDiskPath is the mount point reported as "disk"
const DefaultDiskPath = "/"

// probes are the gopsutil calls a Sampler makes, swappable in tests
type probes struct {
	cpuPercent    func(ctx context.Context) (float64, error)
	virtualMemory func(ctx context.Context) (used, total uint64, err error)
	diskUsage     func(ctx context.Context, path string) (used, total uint64, err error)
	pids          func(ctx context.Context) ([]int32, error)
	newProcess    func(ctx context.Context, pid int32) (procHandle, error)
}

// procHandle is the subset of *process.Process a Sampler reads each tick
type procHandle interface {
	NameWithContext(ctx context.Context) (string, error)
	PercentWithContext(ctx context.Context, interval time.Duration) (float64, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
}

// Sampler reads the machine through gopsutil.
// Process handles are cached by pid so per-process CPU is the delta since the
// previous Snapshot; the first reading of a new process is 0.
type Sampler struct {
	DiskPath string
	logger   *zap.Logger
	probes   probes

	mu      sync.Mutex
	handles map[int32]*tracked
}

type tracked struct {
	handle  procHandle
	lastCPU float64
}

// NewSampler returns a gopsutil-backed Source
func NewSampler(logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		DiskPath: DefaultDiskPath,
		logger:   logger,
		probes:   gopsutilProbes(),
		handles:  make(map[int32]*tracked),
	}
}

func gopsutilProbes() probes {
	return probes{
		cpuPercent: func(ctx context.Context) (float64, error) {
			// interval 0 compares against the previous call
			pcts, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil || len(pcts) == 0 {
				return 0, err
			}
			return pcts[0], nil
		},
		virtualMemory: func(ctx context.Context) (uint64, uint64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, 0, err
			}
			return vm.Used, vm.Total, nil
		},
		diskUsage: func(ctx context.Context, path string) (uint64, uint64, error) {
			du, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return 0, 0, err
			}
			return du.Used, du.Total, nil
		},
		pids: process.PidsWithContext,
		newProcess: func(ctx context.Context, pid int32) (procHandle, error) {
			return process.NewProcessWithContext(ctx, pid)
		},
	}
}

// Snapshot returns the current reading, clamped. Fields that cannot be read
// are left zero.
func (s *Sampler) Snapshot(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{TakenAt: time.Now()}

	cpuPct, err := s.probes.cpuPercent(ctx)
	if err != nil {
		s.logger.Debug("cpu usage unavailable", zap.Error(err))
	}
	snap.CPUPercent = cpuPct

	if snap.MemoryUsed, snap.MemoryTotal, err = s.probes.virtualMemory(ctx); err != nil {
		s.logger.Debug("memory usage unavailable", zap.Error(err))
		snap.MemoryUsed, snap.MemoryTotal = 0, 0
	}

	if snap.DiskUsed, snap.DiskTotal, err = s.probes.diskUsage(ctx, s.DiskPath); err != nil {
		s.logger.Debug("disk usage unavailable", zap.String("path", s.DiskPath), zap.Error(err))
		snap.DiskUsed, snap.DiskTotal = 0, 0
	}

	snap.Processes = s.scan(ctx)
	return snap.Clamp()
}

// scan refreshes the handle cache and reads every live process
func (s *Sampler) scan(ctx context.Context) []Process {
	pids, err := s.probes.pids(ctx)
	if err != nil {
		s.logger.Debug("process table unavailable", zap.Error(err))
		return []Process{}
	}

	alive := make(map[int32]struct{}, len(pids))
	procs := make([]Process, 0, len(pids))
	for _, pid := range pids {
		if pid < 0 {
			continue
		}
		t, ok := s.handles[pid]
		if !ok {
			h, err := s.probes.newProcess(ctx, pid)
			if err != nil {
				// exited between listing and opening
				continue
			}
			t = &tracked{handle: h}
			s.handles[pid] = t
		}
		alive[pid] = struct{}{}

		rec := Process{PID: uint32(pid)}
		rec.Name, _ = t.handle.NameWithContext(ctx)
		rec.CPUPercent, _ = t.handle.PercentWithContext(ctx, 0)
		if mi, err := t.handle.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			rec.MemoryBytes = mi.RSS
		}
		t.lastCPU = rec.CPUPercent
		procs = append(procs, rec)
	}

	for pid := range s.handles {
		if _, ok := alive[pid]; !ok {
			delete(s.handles, pid)
		}
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs
}

// Tracked reports how many process handles are cached
func (s *Sampler) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
