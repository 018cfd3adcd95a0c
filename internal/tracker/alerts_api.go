package tracker

import (
	"context"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// FetchAlertRules gets the configured alert rules
func (c *Client) FetchAlertRules(ctx context.Context) (*domain.AlertRules, error) {
	var out domain.AlertRules
	if err := c.get(ctx, "/api/alerts/rules", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchIncidents gets open and past incidents
func (c *Client) FetchIncidents(ctx context.Context) (*domain.Incidents, error) {
	var out domain.Incidents
	if err := c.get(ctx, "/api/alerts/incidents", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
