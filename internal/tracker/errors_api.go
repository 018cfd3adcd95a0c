package tracker

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// ErrorQuery filters GET /api/errors. Zero values are omitted.
type ErrorQuery struct {
	Limit    int
	Offset   int
	Level    domain.Level
	Source   string
	Resolved *bool
}

// Values encodes the query, rejecting values the service cannot accept.
func (q ErrorQuery) Values() (url.Values, error) {
	values := url.Values{}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, &RequestError{Op: "GET /api/errors", Err: errNegativePaging}
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Level != "" {
		level, err := domain.ParseLevel(string(q.Level))
		if err != nil {
			return nil, &RequestError{Op: "GET /api/errors", Err: err}
		}
		values.Set("level", string(level))
	}
	if q.Source != "" {
		values.Set("source", q.Source)
	}
	if q.Resolved != nil {
		values.Set("resolved", strconv.FormatBool(*q.Resolved))
	}
	return values, nil
}

// CheckHealth probes GET /health
func (c *Client) CheckHealth(ctx context.Context) (*domain.Health, error) {
	var out domain.Health
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchErrors lists errors with pagination and filtering
func (c *Client) FetchErrors(ctx context.Context, query ErrorQuery) (*domain.ErrorList, error) {
	values, err := query.Values()
	if err != nil {
		return nil, err
	}

	var out domain.ErrorList
	if err := c.get(ctx, "/api/errors", values, &out); err != nil {
		return nil, err
	}
	if out.Errors == nil {
		out.Errors = []domain.ErrorRecord{}
	}
	return &out, nil
}

// FetchErrorByID gets a single error record
func (c *Client) FetchErrorByID(ctx context.Context, id string) (*domain.ErrorRecord, error) {
	escaped, err := escapeID("GET /api/errors/{id}", id)
	if err != nil {
		return nil, err
	}

	var out domain.ErrorRecord
	if err := c.get(ctx, "/api/errors/"+escaped, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveError marks an error as resolved
func (c *Client) ResolveError(ctx context.Context, id string) (*domain.ResolveResult, error) {
	escaped, err := escapeID("PUT /api/errors/{id}/resolve", id)
	if err != nil {
		return nil, err
	}

	var out domain.ResolveResult
	if err := c.do(ctx, http.MethodPut, "/api/errors/"+escaped+"/resolve", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteError removes an error record
func (c *Client) DeleteError(ctx context.Context, id string) error {
	escaped, err := escapeID("DELETE /api/errors/{id}", id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/errors/"+escaped, nil, nil, nil)
}

// FetchStats gets the aggregate error counters
func (c *Client) FetchStats(ctx context.Context) (*domain.Stats, error) {
	var out domain.Stats
	if err := c.get(ctx, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
