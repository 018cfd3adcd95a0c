package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
)

const maxHourlyRange = 90 * 24 * time.Hour

// Report aggregates archived observations over a time range.
func (s *DashboardService) Report(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error) {
	if s.reports == nil {
		return nil, ErrReportsDisabled
	}

	if req.From > req.To {
		s.log.Warn("Invalid time range for report",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		return nil, fmt.Errorf("%w: from timestamp must be less than or equal to to timestamp", ErrInvalidRequest)
	}

	if !repository.IsValidGroupBy(req.GroupBy) {
		s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
		return nil, fmt.Errorf("%w: invalid group_by value: %s (supported: %s)",
			ErrInvalidRequest, req.GroupBy, strings.Join(repository.ValidGroupBy, ", "))
	}

	from := time.Unix(req.From, 0).UTC()
	to := time.Unix(req.To, 0).UTC()
	if req.GroupBy == "hour" && to.Sub(from) > maxHourlyRange {
		days := int(to.Sub(from).Hours() / 24)
		s.log.Warn("Large time range for hourly grouping", zap.Int("range_days", days))
		return nil, fmt.Errorf("%w: time range too large for hourly grouping (max 90 days, got %d days)",
			ErrInvalidRequest, days)
	}

	s.log.Info("Querying report",
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("level", req.Level),
		zap.String("group_by", req.GroupBy))

	result, err := s.reports.GetReport(ctx, repository.ReportQuery{
		From:    from,
		To:      to,
		Level:   req.Level,
		GroupBy: req.GroupBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get report from repository: %w", err)
	}

	response := &dto.ReportResponse{
		From:              req.From,
		To:                req.To,
		Level:             req.Level,
		TotalObservations: result.TotalObservations,
		UniqueRecords:     result.UniqueRecords,
		TotalOccurrences:  result.TotalOccurrences,
		GroupBy:           req.GroupBy,
		Groups:            make([]dto.ReportGroupData, 0, len(result.Groups)),
	}
	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.ReportGroupData{
			GroupValue:   group.GroupValue,
			Observations: group.Observations,
			Occurrences:  group.Occurrences,
		})
	}

	return response, nil
}
