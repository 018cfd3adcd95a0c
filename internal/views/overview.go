package views

import (
	"math"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

const healthyStatus = "ok"

type APIHealth struct {
	Healthy   bool      `json:"healthy"`
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}

func NewAPIHealth(h *domain.Health) APIHealth {
	if h == nil {
		return APIHealth{}
	}
	return APIHealth{Healthy: h.Status == healthyStatus, Status: h.Status, CheckedAt: h.Timestamp}
}

// StatsSummary is the counter row on the overview page.
type StatsSummary struct {
	TotalErrors     int `json:"total_errors"`
	ResolvedErrors  int `json:"resolved_errors"`
	UnresolvedCount int `json:"unresolved_errors"`
	ErrorsToday     int `json:"errors_today"`
	ErrorsThisWeek  int `json:"errors_this_week"`
	ErrorsThisMonth int `json:"errors_this_month"`
	ResolvedRate    int `json:"resolved_rate"`
}

func NewStatsSummary(s *domain.Stats) StatsSummary {
	if s == nil {
		return StatsSummary{}
	}
	return StatsSummary{
		TotalErrors:     s.TotalErrors,
		ResolvedErrors:  s.ResolvedErrors,
		UnresolvedCount: s.TotalErrors - s.ResolvedErrors,
		ErrorsToday:     s.ErrorsToday,
		ErrorsThisWeek:  s.ErrorsThisWeek,
		ErrorsThisMonth: s.ErrorsThisMonth,
		ResolvedRate:    ResolvedRate(s.ResolvedErrors, s.TotalErrors),
	}
}

// ResolvedRate is the whole-number percentage of resolved errors.
func ResolvedRate(resolved, total int) int {
	return int(math.Round(Percent(resolved, total)))
}

// Overview is the landing page: API health, counters and the live stream.
type Overview struct {
	Health Panel[APIHealth]    `json:"health"`
	Stats  Panel[StatsSummary] `json:"stats"`
	Stream StreamView          `json:"stream"`
}
