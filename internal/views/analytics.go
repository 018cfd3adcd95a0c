package views

import (
	"math"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

type AnalyticsSummary struct {
	TotalErrors     int     `json:"total_errors"`
	ErrorsThisWeek  int     `json:"errors_this_week"`
	ErrorsThisMonth int     `json:"errors_this_month"`
	WeeklyTrend     float64 `json:"weekly_trend"`
	ResolutionRate  float64 `json:"resolution_rate"`
	DailyAverage    int     `json:"daily_average"`
}

func NewAnalyticsSummary(s *domain.Stats) AnalyticsSummary {
	if s == nil {
		return AnalyticsSummary{}
	}
	return AnalyticsSummary{
		TotalErrors:     s.TotalErrors,
		ErrorsThisWeek:  s.ErrorsThisWeek,
		ErrorsThisMonth: s.ErrorsThisMonth,
		WeeklyTrend:     round1(WeeklyTrend(s.ErrorsThisWeek, s.ErrorsThisMonth)),
		ResolutionRate:  round1(Percent(s.ResolvedErrors, s.TotalErrors)),
		DailyAverage:    DailyAverage(s.ErrorsThisMonth),
	}
}

// WeeklyTrend compares this week against an average week of the month, in
// percent. It is 0 when either count is 0.
func WeeklyTrend(week, month int) float64 {
	if week == 0 || month == 0 {
		return 0
	}
	return (float64(week)/(float64(month)/4) - 1) * 100
}

func DailyAverage(month int) int {
	return int(math.Round(float64(month) / 30))
}

// TrendSummary condenses a trend series.
type TrendSummary struct {
	Period        string              `json:"period"`
	GroupBy       string              `json:"group_by"`
	Points        []domain.TrendPoint `json:"points"`
	Total         int                 `json:"total"`
	Peak          *domain.TrendPoint  `json:"peak,omitempty"`
	ChangePercent float64             `json:"change_percent"`
}

func NewTrendSummary(t *domain.Trends) TrendSummary {
	if t == nil {
		return TrendSummary{Points: []domain.TrendPoint{}}
	}
	out := TrendSummary{Period: t.Period, GroupBy: t.GroupBy, Points: t.Points}
	if out.Points == nil {
		out.Points = []domain.TrendPoint{}
	}
	for i, p := range t.Points {
		out.Total += p.Count
		if out.Peak == nil || p.Count > out.Peak.Count {
			out.Peak = &t.Points[i]
		}
	}
	if n := len(t.Points); n >= 2 {
		prev, last := t.Points[n-2].Count, t.Points[n-1].Count
		if prev != 0 {
			out.ChangePercent = round1((float64(last)/float64(prev) - 1) * 100)
		}
	}
	return out
}

type PerformanceView struct {
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	P95ResponseTimeMs   float64 `json:"p95_response_time_ms"`
	ErrorRatePercent    float64 `json:"error_rate_percent"`
	ThroughputPerMinute float64 `json:"throughput_per_minute"`
}

func NewPerformanceView(p *domain.Performance) PerformanceView {
	if p == nil {
		return PerformanceView{}
	}
	return PerformanceView{
		AvgResponseTimeMs:   round1(p.AvgResponseTimeMs),
		P95ResponseTimeMs:   round1(p.P95ResponseTimeMs),
		ErrorRatePercent:    round1(p.ErrorRate),
		ThroughputPerMinute: round1(p.ThroughputPerMinute),
	}
}

// Analytics is the analytics page.
type Analytics struct {
	Summary     Panel[AnalyticsSummary] `json:"summary"`
	Performance Panel[PerformanceView]  `json:"performance"`
}
