package service

import (
	"context"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

// DashboardServicer defines the interface for dashboard service operations
type DashboardServicer interface {
	Health(ctx context.Context) dto.HealthResponse
	Overview() views.Overview

	Stream() views.StreamView
	AcknowledgeStream() views.StreamView
	PauseStream() views.StreamView
	ResumeStream() views.StreamView
	RefreshStream() views.StreamView
	SubscribeStream() (<-chan stream.Snapshot, func())

	ListErrors(ctx context.Context, req *dto.ListErrorsRequest) (*views.ErrorTable, error)
	GetError(ctx context.Context, id string) (*domain.ErrorRecord, error)
	ResolveError(ctx context.Context, id string) (*dto.ResolveResponse, error)
	DeleteError(ctx context.Context, id string) error

	Monitoring() views.Monitoring
	Uptime() views.UptimePage
	Analytics() views.Analytics
	Performance() views.Panel[views.PerformanceView]
	Trends(ctx context.Context, req *dto.TrendsRequest) (*views.TrendSummary, error)
	Alerts(ctx context.Context) (*views.Alerts, error)
	Report(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error)
}

// Recorder receives the metrics emitted by the service and its polls.
type Recorder interface {
	ObservePoll(key, outcome string, elapsed time.Duration)
	ObserveMerge(fresh, size, newCount int)
	ObserveMutation(op string, err error)
	ObservePublish(n int, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObservePoll(string, string, time.Duration) {}
func (nopRecorder) ObserveMerge(int, int, int)                {}
func (nopRecorder) ObserveMutation(string, error)             {}
func (nopRecorder) ObservePublish(int, error)                 {}
