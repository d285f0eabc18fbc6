package services

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthSample is a point-in-time view of the admin process and host.
type HealthSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	Uptime            string    `json:"uptime"`
	Goroutines        int       `json:"goroutines"`
	HeapAllocBytes    uint64    `json:"heapAllocBytes"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
	Slices            int       `json:"slices"`
}

// CaptureHealth samples process and host usage. diskPath is the local
// storage directory; the root filesystem is used when it cannot be read.
// Sampling errors leave the affected fields zero.
func CaptureHealth(diskPath string, started time.Time) HealthSample {
	var heap runtime.MemStats
	runtime.ReadMemStats(&heap)
	sample := HealthSample{
		CapturedAt:     time.Now().UTC(),
		Uptime:         time.Since(started).Round(time.Second).String(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: heap.HeapAlloc,
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if cpuPerc, err := proc.CPUPercent(); err == nil {
			sample.ProcessCpuLoad = cpuPerc / 100.0
		}
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		sample.SystemCpuLoad = sysCPU[0] / 100.0
	}
	return sample
}
