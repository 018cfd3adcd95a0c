package repository

import (
	"context"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// ReportQuery selects archived observations for a report
type ReportQuery struct {
	From    time.Time
	To      time.Time
	Level   string
	GroupBy string
}

// ReportGroup represents aggregated observations for a specific group
type ReportGroup struct {
	GroupValue   string
	Observations uint64
	Occurrences  uint64
}

// ReportResult represents the result of a report query
type ReportResult struct {
	TotalObservations uint64
	UniqueRecords     uint64
	TotalOccurrences  uint64
	Groups            []ReportGroup
}

// ValidGroupBy lists the supported report groupings
var ValidGroupBy = []string{"level", "source", "hour", "day"}

// IsValidGroupBy reports whether groupBy is empty or one of ValidGroupBy
func IsValidGroupBy(groupBy string) bool {
	if groupBy == "" {
		return true
	}
	for _, g := range ValidGroupBy {
		if g == groupBy {
			return true
		}
	}
	return false
}

// ObservationRepository defines the interface for observation storage operations
type ObservationRepository interface {
	// InsertBatch inserts a batch of observations into the storage
	InsertBatch(ctx context.Context, observations []*domain.Observation) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// GetReport aggregates archived observations based on the query
	GetReport(ctx context.Context, query ReportQuery) (*ReportResult, error)
}
