package domain

import "time"

type ServiceStatus struct {
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	UptimePercent  float64   `json:"uptime_percent"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	LastChecked    time.Time `json:"last_checked"`
}

// ServicesReport is the body of GET /api/monitoring/services.
type ServicesReport struct {
	Services []ServiceStatus `json:"services"`
}

// SystemMetrics is the body of GET /api/monitoring/metrics.
type SystemMetrics struct {
	CPUUsagePercent    float64 `json:"cpu_usage_percent"`
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	DiskUsagePercent   float64 `json:"disk_usage_percent"`
	RequestsPerMinute  float64 `json:"requests_per_minute"`
	Timeframe          string  `json:"timeframe"`
}

// Uptime is the body of GET /api/monitoring/uptime.
type Uptime struct {
	UptimePercent24h   float64 `json:"uptime_percent_24h"`
	UptimePercent7d    float64 `json:"uptime_percent_7d"`
	UptimePercent30d   float64 `json:"uptime_percent_30d"`
	CurrentUptimeHours float64 `json:"current_uptime_hours"`
}
