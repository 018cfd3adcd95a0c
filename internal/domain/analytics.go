package domain

import "time"

type TrendPoint struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// Trends is the body of GET /api/analytics/trends.
type Trends struct {
	Period  string       `json:"period"`
	GroupBy string       `json:"group_by"`
	Points  []TrendPoint `json:"points"`
}

// Performance is the body of GET /api/analytics/performance.
type Performance struct {
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	P95ResponseTimeMs   float64 `json:"p95_response_time_ms"`
	ErrorRate           float64 `json:"error_rate"`
	ThroughputPerMinute float64 `json:"throughput_per_minute"`
}

type AlertRule struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Condition     string   `json:"condition"`
	Threshold     float64  `json:"threshold"`
	Enabled       bool     `json:"enabled"`
	Notifications []string `json:"notifications"`
}

type AlertRules struct {
	Rules []AlertRule `json:"rules"`
}

type Incident struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Severity   string     `json:"severity"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

type Incidents struct {
	Incidents []Incident `json:"incidents"`
}
