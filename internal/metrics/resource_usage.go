package metrics

import (
	"runtime"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage is a point-in-time sample of process and host resources.
type ResourceUsage struct {
	AllocMB              int64   `json:"alloc_mb"`
	SysMB                int64   `json:"sys_mb"`
	Goroutines           int     `json:"goroutines"`
	GCCount              int64   `json:"gc_count"`
	SystemMemUsedMB      int64   `json:"system_mem_used_mb"`
	SystemMemTotalMB     int64   `json:"system_mem_total_mb"`
	SystemMemUsedPercent float64 `json:"system_mem_used_percent"`
	CPUUsagePercent      float64 `json:"cpu_usage_percent"`
}

// GetResourceUsage samples resource usage. CPU usage is measured over
// cpuWindow; zero compares against the previous call instead of blocking.
func GetResourceUsage(cpuWindow time.Duration) ResourceUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
		GCCount:    int64(m.NumGC),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
		usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	}

	if cpuPercents, err := cpu.Percent(cpuWindow, false); err == nil && len(cpuPercents) > 0 {
		usage.CPUUsagePercent = cpuPercents[0]
	}

	return usage
}

// ReportHook returns a callback for periodic status reports that samples
// resource usage, exports it on c and logs it next to the run counters.
func ReportHook(c *Collector, logger zerolog.Logger) func(models.RunStats) {
	logger = logger.With().Str("component", "ResourceMonitor").Logger()
	return func(stats models.RunStats) {
		usage := GetResourceUsage(100 * time.Millisecond)
		if c != nil {
			c.ObserveResources(usage)
		}
		logger.Info().
			Str("run_id", stats.RunID).
			Int64("alloc_mb", usage.AllocMB).
			Int64("sys_mb", usage.SysMB).
			Int("goroutines", usage.Goroutines).
			Float64("system_mem_percent", usage.SystemMemUsedPercent).
			Float64("cpu_percent", usage.CPUUsagePercent).
			Msg("Resource usage")
	}
}
