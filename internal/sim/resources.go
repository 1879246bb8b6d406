package sim

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is a snapshot of the process at the end of a run.
type ResourceUsage struct {
	CPUPercent            float64 `json:"cpu_percent"`
	MemoryRSS             uint64  `json:"memory_rss"`
	MemoryVMS             uint64  `json:"memory_vms"`
	HeapAlloc             uint64  `json:"heap_alloc"`
	SystemMemoryPercent   float64 `json:"system_memory_percent"`
	SystemMemoryAvailable uint64  `json:"system_memory_available"`
	GoroutineCount        int     `json:"goroutines"`
	ThreadCount           int32   `json:"threads"`
}

// resourceMonitor samples this process through gopsutil. Every probe is
// best effort: a failing probe leaves its fields zero.
type resourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
}

func newResourceMonitor(ctx context.Context) *resourceMonitor {
	rm := &resourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return rm
	}
	rm.process = proc
	if t, err := proc.TimesWithContext(ctx); err == nil {
		rm.startCPUTime = t.Total()
	}
	return rm
}

func (rm *resourceMonitor) usage(ctx context.Context) *ResourceUsage {
	usage := &ResourceUsage{GoroutineCount: runtime.NumGoroutine()}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	usage.HeapAlloc = ms.HeapAlloc

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		usage.SystemMemoryPercent = vm.UsedPercent
		usage.SystemMemoryAvailable = vm.Available
	}

	if rm.process == nil {
		return usage
	}
	if t, err := rm.process.TimesWithContext(ctx); err == nil {
		if elapsed := time.Since(rm.startTime).Seconds(); elapsed > 0 {
			usage.CPUPercent = (t.Total() - rm.startCPUTime) / elapsed * 100
		}
	}
	if mi, err := rm.process.MemoryInfoWithContext(ctx); err == nil {
		usage.MemoryRSS = mi.RSS
		usage.MemoryVMS = mi.VMS
	}
	usage.ThreadCount, _ = rm.process.NumThreadsWithContext(ctx)
	return usage
}
