package views

import (
	"math"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

const (
	serviceHealthy = "healthy"

	StatusOperational = "operational"
	StatusDegraded    = "degraded"

	// operationalThreshold is the 7-day uptime percent above which the
	// system counts as operational.
	operationalThreshold = 99.0
)

type ServiceRow struct {
	Name           string  `json:"name"`
	Status         string  `json:"status"`
	Healthy        bool    `json:"healthy"`
	Availability   string  `json:"availability"`
	UptimePercent  float64 `json:"uptime_percent"`
	ResponseTimeMs int     `json:"response_time_ms"`
}

func NewServiceRows(r *domain.ServicesReport) []ServiceRow {
	if r == nil {
		return []ServiceRow{}
	}
	rows := make([]ServiceRow, 0, len(r.Services))
	for _, s := range r.Services {
		healthy := s.Status == serviceHealthy
		availability := StatusDegraded
		if healthy {
			availability = StatusOperational
		}
		rows = append(rows, ServiceRow{
			Name:           s.Name,
			Status:         s.Status,
			Healthy:        healthy,
			Availability:   availability,
			UptimePercent:  s.UptimePercent,
			ResponseTimeMs: int(math.Round(s.ResponseTimeMs)),
		})
	}
	return rows
}

type ResourceUsage struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	DiskPercent       float64 `json:"disk_percent"`
	RequestsPerMinute float64 `json:"requests_per_minute"`
	Timeframe         string  `json:"timeframe"`
}

func NewResourceUsage(m *domain.SystemMetrics) ResourceUsage {
	if m == nil {
		return ResourceUsage{}
	}
	return ResourceUsage{
		CPUPercent:        round1(m.CPUUsagePercent),
		MemoryPercent:     round1(m.MemoryUsagePercent),
		DiskPercent:       round1(m.DiskUsagePercent),
		RequestsPerMinute: m.RequestsPerMinute,
		Timeframe:         m.Timeframe,
	}
}

type UptimeSummary struct {
	Hours         float64 `json:"hours"`
	Days          int     `json:"days"`
	Percent24h    float64 `json:"percent_24h"`
	Percent7d     float64 `json:"percent_7d"`
	Percent30d    float64 `json:"percent_30d"`
	OverallStatus string  `json:"overall_status"`
}

func NewUptimeSummary(u *domain.Uptime) UptimeSummary {
	if u == nil {
		return UptimeSummary{OverallStatus: StatusDegraded}
	}
	return UptimeSummary{
		Hours:         round1(u.CurrentUptimeHours),
		Days:          UptimeDays(u.CurrentUptimeHours),
		Percent24h:    u.UptimePercent24h,
		Percent7d:     u.UptimePercent7d,
		Percent30d:    u.UptimePercent30d,
		OverallStatus: OverallStatus(u.UptimePercent7d),
	}
}

func UptimeDays(hours float64) int {
	return int(math.Round(hours / 24))
}

// OverallStatus is operational only when 7-day uptime is strictly above 99%.
func OverallStatus(uptime7d float64) string {
	if uptime7d > operationalThreshold {
		return StatusOperational
	}
	return StatusDegraded
}

// HealthyCount counts rows whose service reports healthy.
func HealthyCount(rows []ServiceRow) int {
	n := 0
	for _, r := range rows {
		if r.Healthy {
			n++
		}
	}
	return n
}

// Monitoring is the monitoring page.
type Monitoring struct {
	Services Panel[[]ServiceRow]  `json:"services"`
	Metrics  Panel[ResourceUsage] `json:"metrics"`
	Uptime   Panel[UptimeSummary] `json:"uptime"`
}

// UptimePage is the per-service availability page.
type UptimePage struct {
	Overall  Panel[UptimeSummary] `json:"overall"`
	Services Panel[[]ServiceRow]  `json:"services"`
}
