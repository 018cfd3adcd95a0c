package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

// ListErrors fetches one page of the error table.
func (s *DashboardService) ListErrors(ctx context.Context, req *dto.ListErrorsRequest) (*views.ErrorTable, error) {
	query := tracker.ErrorQuery{
		Limit:    req.Limit,
		Offset:   req.Offset,
		Level:    domain.Level(req.Level),
		Source:   req.Source,
		Resolved: req.Resolved,
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	list, err := s.tracker.FetchErrors(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch errors: %w", err)
	}

	table := views.NewErrorTable(list, s.now())
	return &table, nil
}

// GetError fetches a single error record.
func (s *DashboardService) GetError(ctx context.Context, id string) (*domain.ErrorRecord, error) {
	record, err := s.tracker.FetchErrorByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch error %s: %w", id, err)
	}
	return record, nil
}

// ResolveError marks an error resolved and invalidates the queries that
// show it. A failed resolve leaves local state untouched.
func (s *DashboardService) ResolveError(ctx context.Context, id string) (*dto.ResolveResponse, error) {
	result, err := s.tracker.ResolveError(ctx, id)
	s.recorder.ObserveMutation("resolve", err)
	if err != nil {
		s.log.Warn("Failed to resolve error", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to resolve error %s: %w", id, err)
	}

	s.invalidateErrorViews()
	s.log.Info("Error resolved", zap.String("id", id))

	resp := &dto.ResolveResponse{ID: id, Status: "resolved"}
	if result != nil && result.Status != "" {
		resp.Status = result.Status
	}
	return resp, nil
}

// DeleteError removes an error and invalidates the queries that show it.
func (s *DashboardService) DeleteError(ctx context.Context, id string) error {
	err := s.tracker.DeleteError(ctx, id)
	s.recorder.ObserveMutation("delete", err)
	if err != nil {
		s.log.Warn("Failed to delete error", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete error %s: %w", id, err)
	}

	s.invalidateErrorViews()
	s.log.Info("Error deleted", zap.String("id", id))
	return nil
}

func (s *DashboardService) invalidateErrorViews() {
	n := s.cache.Invalidate(KeyErrors) + s.cache.Invalidate(KeyStats)
	s.log.Debug("Invalidated error queries", zap.Int("queries", n))
}

// Trends fetches error counts over time for the requested window.
func (s *DashboardService) Trends(ctx context.Context, req *dto.TrendsRequest) (*views.TrendSummary, error) {
	trends, err := s.tracker.FetchTrends(ctx, tracker.TrendQuery{Period: req.Period, GroupBy: req.GroupBy})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends: %w", err)
	}
	summary := views.NewTrendSummary(trends)
	return &summary, nil
}

// Alerts fetches alert rules and incidents concurrently.
func (s *DashboardService) Alerts(ctx context.Context) (*views.Alerts, error) {
	var (
		rules     *domain.AlertRules
		incidents *domain.Incidents
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = s.tracker.FetchAlertRules(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		incidents, err = s.tracker.FetchIncidents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	alerts := views.NewAlerts(rules, incidents)
	return &alerts, nil
}
