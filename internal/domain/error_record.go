package domain

import (
	"fmt"
	"strings"
	"time"
)

// Level is the severity of an ErrorRecord.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelDebug   Level = "debug"
)

// ParseLevel parses a level case-insensitively. An empty string yields an
// empty level, meaning "no filter".
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case LevelError:
		return LevelError, nil
	case LevelWarning:
		return LevelWarning, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelDebug:
		return LevelDebug, nil
	}
	return "", fmt.Errorf("unknown level: %q (supported: error, warning, info, debug)", s)
}

// ErrorRecord is a server-aggregated error occurrence. The tracking service
// owns it; the dashboard only reads it.
type ErrorRecord struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Level       Level                  `json:"level"`
	Message     string                 `json:"message"`
	Source      string                 `json:"source"`
	Environment string                 `json:"environment,omitempty"`
	Count       int                    `json:"count"`
	Resolved    bool                   `json:"resolved"`
	FirstSeen   time.Time              `json:"first_seen"`
	LastSeen    time.Time              `json:"last_seen"`
	StackTrace  string                 `json:"stack_trace,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	URL         string                 `json:"url,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	IPAddress   string                 `json:"ip_address,omitempty"`
	Fingerprint string                 `json:"fingerprint,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ErrorList is the paginated body of GET /api/errors.
type ErrorList struct {
	Errors []ErrorRecord `json:"errors"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// Stats is the body of GET /api/stats.
type Stats struct {
	TotalErrors     int `json:"total_errors"`
	ResolvedErrors  int `json:"resolved_errors"`
	ErrorsToday     int `json:"errors_today"`
	ErrorsThisWeek  int `json:"errors_this_week"`
	ErrorsThisMonth int `json:"errors_this_month"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ResolveResult is the body of PUT /api/errors/{id}/resolve.
type ResolveResult struct {
	Status string `json:"status"`
}
