package tracker

import (
	"context"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// ErrorTracker defines the read and mutation operations offered by the
// error-tracking service.
type ErrorTracker interface {
	CheckHealth(ctx context.Context) (*domain.Health, error)

	FetchErrors(ctx context.Context, query ErrorQuery) (*domain.ErrorList, error)
	FetchErrorByID(ctx context.Context, id string) (*domain.ErrorRecord, error)
	ResolveError(ctx context.Context, id string) (*domain.ResolveResult, error)
	DeleteError(ctx context.Context, id string) error
	FetchStats(ctx context.Context) (*domain.Stats, error)

	FetchServices(ctx context.Context) (*domain.ServicesReport, error)
	FetchSystemMetrics(ctx context.Context, timeframe string) (*domain.SystemMetrics, error)
	FetchUptime(ctx context.Context) (*domain.Uptime, error)

	FetchTrends(ctx context.Context, query TrendQuery) (*domain.Trends, error)
	FetchPerformance(ctx context.Context) (*domain.Performance, error)

	FetchAlertRules(ctx context.Context) (*domain.AlertRules, error)
	FetchIncidents(ctx context.Context) (*domain.Incidents, error)
}
