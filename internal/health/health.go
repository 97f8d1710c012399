package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type HealthChecker struct {
	redis    *redis.Client
	sessions func() int
	started  time.Time
}

type HealthStatus struct {
	Status string      `json:"status"`
	Cache  CacheHealth `json:"cache"`
}

// CacheHealth reports the export cache. Without redis it is "disabled",
// which does not make the service unhealthy.
type CacheHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type DetailedStatus struct {
	HealthStatus
	Uptime         string  `json:"uptime"`
	PreviewClients int     `json:"preview_sessions"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	MemoryUsed     string  `json:"memory_used"`
	MemoryTotal    string  `json:"memory_total"`
	DiskPercent    float64 `json:"disk_percent"`
}

// NewHealthChecker takes the optional redis client and a live session counter
func NewHealthChecker(rdb *redis.Client, sessions func() int) *HealthChecker {
	return &HealthChecker{redis: rdb, sessions: sessions, started: time.Now()}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	cacheHealth := h.checkCache()

	status := "healthy"
	if cacheHealth.Status == "unhealthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status: status,
		Cache:  cacheHealth,
	}
}

func (h *HealthChecker) CheckDetailed() DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(),
		Uptime:       formatUptime(int(time.Since(h.started).Seconds())),
	}
	if h.sessions != nil {
		d.PreviewClients = h.sessions()
	}

	if cpuPercents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		d.CPUPercent = cpuPercents[0]
	}
	if memStats, err := mem.VirtualMemory(); err == nil {
		d.MemoryPercent = memStats.UsedPercent
		d.MemoryUsed = formatBytes(memStats.Used)
		d.MemoryTotal = formatBytes(memStats.Total)
	}
	if diskStats, err := disk.Usage("/"); err == nil {
		d.DiskPercent = diskStats.UsedPercent
	}
	return d
}

func (h *HealthChecker) checkCache() CacheHealth {
	if h.redis == nil {
		return CacheHealth{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.redis.Ping(ctx).Err()
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return CacheHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return CacheHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
