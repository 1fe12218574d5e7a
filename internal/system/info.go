package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/process"
)

// GetHostInfo returns general system information for the overview header
func GetHostInfo(ctx context.Context) (*HostInfo, error) {
	hostStat, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	cpuModel := "Unknown CPU"
	if cpuInfo, err := cpu.InfoWithContext(ctx); err == nil && len(cpuInfo) > 0 {
		cpuModel = cpuInfo[0].ModelName
	}

	return &HostInfo{
		Host:   hostStat.Hostname,
		OS:     fmt.Sprintf("%s %s %s", hostStat.Platform, hostStat.PlatformVersion, hostStat.KernelArch),
		Kernel: fmt.Sprintf("%s %s", hostStat.OS, hostStat.KernelVersion),
		CPU:    cpuModel,
	}, nil
}

// Describe returns details of a live process. Only the existence check is
// fatal; the other fields are best effort.
func (s *Sampler) Describe(ctx context.Context, pid uint32) (ProcessDetail, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return ProcessDetail{}, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	d := ProcessDetail{Process: Process{PID: pid}}
	d.Name, _ = p.NameWithContext(ctx)
	d.Username, _ = p.UsernameWithContext(ctx)

	if status, err := p.StatusWithContext(ctx); err == nil {
		d.Status = strings.Join(status, ",")
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		d.MemoryBytes = mi.RSS
		d.VirtualBytes = mi.VMS
	}
	if ms, err := p.CreateTimeWithContext(ctx); err == nil && ms > 0 {
		d.CreateTime = time.UnixMilli(ms)
	}

	// the figure from the last scan, so the panel matches the table
	s.mu.Lock()
	if t, ok := s.handles[int32(pid)]; ok {
		d.CPUPercent = t.lastCPU
	}
	s.mu.Unlock()
	d.CPUPercent = clampPercent(d.CPUPercent)

	return d, nil
}
