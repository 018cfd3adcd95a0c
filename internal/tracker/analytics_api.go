package tracker

import (
	"context"
	"net/url"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// TrendQuery selects the window and bucket size of GET /api/analytics/trends.
type TrendQuery struct {
	Period  string
	GroupBy string
}

func (q TrendQuery) values() url.Values {
	values := url.Values{}
	if q.Period != "" {
		values.Set("period", q.Period)
	}
	if q.GroupBy != "" {
		values.Set("group_by", q.GroupBy)
	}
	return values
}

// FetchTrends gets error counts over time
func (c *Client) FetchTrends(ctx context.Context, query TrendQuery) (*domain.Trends, error) {
	var out domain.Trends
	if err := c.get(ctx, "/api/analytics/trends", query.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchPerformance gets the performance summary
func (c *Client) FetchPerformance(ctx context.Context) (*domain.Performance, error) {
	var out domain.Performance
	if err := c.get(ctx, "/api/analytics/performance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
