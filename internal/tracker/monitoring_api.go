package tracker

import (
	"context"
	"net/url"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// FetchServices gets per-service health
func (c *Client) FetchServices(ctx context.Context) (*domain.ServicesReport, error) {
	var out domain.ServicesReport
	if err := c.get(ctx, "/api/monitoring/services", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSystemMetrics gets resource usage, optionally for a timeframe such as "1h"
func (c *Client) FetchSystemMetrics(ctx context.Context, timeframe string) (*domain.SystemMetrics, error) {
	var values url.Values
	if timeframe != "" {
		values = url.Values{"timeframe": {timeframe}}
	}

	var out domain.SystemMetrics
	if err := c.get(ctx, "/api/monitoring/metrics", values, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchUptime gets uptime percentages
func (c *Client) FetchUptime(ctx context.Context) (*domain.Uptime, error) {
	var out domain.Uptime
	if err := c.get(ctx, "/api/monitoring/uptime", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
