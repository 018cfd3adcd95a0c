package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
)

const observationsTable = "error_observations"

// Repository implements ObservationRepository for ClickHouse
type Repository struct {
	conn driver.Conn
	// closer is nil when the repository was built on a bare connection
	closer *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		conn:   client.Conn(),
		closer: client,
		log:    log,
	}
}

// NewRepositoryWithConn builds a repository on an existing connection
func NewRepositoryWithConn(conn driver.Conn, log *zap.Logger) *Repository {
	return &Repository{conn: conn, log: log}
}

// InitSchema initializes the observation table. Re-archiving the same
// observation collapses into one row on merge.
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS error_observations (
		record_id String,
		fingerprint String,
		level LowCardinality(String),
		source LowCardinality(String),
		message String,
		count UInt32,
		resolved Bool,
		timestamp DateTime64(3),
		first_seen DateTime64(3),
		last_seen DateTime64(3),
		observed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (record_id, count)
	ORDER BY (record_id, count, last_seen)
	PARTITION BY toYYYYMM(observed_at)
	SETTINGS index_granularity = 8192
	`

	if err := r.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", observationsTable, err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of observations into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, observations []*domain.Observation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+observationsTable)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, obs := range observations {
		if obs.Version == 0 {
			obs.Version = uint64(time.Now().UnixNano())
		}
		observedAt := obs.ObservedAt
		if observedAt.IsZero() {
			observedAt = time.Now()
		}

		err := batch.Append(
			obs.RecordID,
			obs.Fingerprint,
			obs.Level,
			obs.Source,
			obs.Message,
			obs.Count,
			obs.Resolved,
			obs.Timestamp,
			obs.FirstSeen,
			obs.LastSeen,
			observedAt,
			obs.Version,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append observation to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return r.conn.Close()
}

// reportWhere builds the shared filter for report queries
func reportWhere(query repository.ReportQuery) (string, []interface{}) {
	clauses := []string{"observed_at >= ?", "observed_at <= ?"}
	args := []interface{}{query.From, query.To}
	if query.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, query.Level)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// groupColumns maps a grouping to its select expression, GROUP BY and ORDER BY
func groupColumns(groupBy string) (selectField, groupByClause, orderBy string, err error) {
	switch groupBy {
	case "level":
		return "level", "GROUP BY level", "ORDER BY observations DESC", nil
	case "source":
		return "source", "GROUP BY source", "ORDER BY observations DESC", nil
	case "hour":
		return "formatDateTime(toStartOfHour(observed_at), '%Y-%m-%d %H:00:00')",
			"GROUP BY toStartOfHour(observed_at)", "ORDER BY group_value ASC", nil
	case "day":
		return "formatDateTime(toStartOfDay(observed_at), '%Y-%m-%d')",
			"GROUP BY toStartOfDay(observed_at)", "ORDER BY group_value ASC", nil
	}
	return "", "", "", fmt.Errorf("unsupported group_by value: %s (supported: %s)",
		groupBy, strings.Join(repository.ValidGroupBy, ", "))
}

// GetReport aggregates archived observations
func (r *Repository) GetReport(ctx context.Context, query repository.ReportQuery) (*repository.ReportResult, error) {
	result := &repository.ReportResult{
		Groups: []repository.ReportGroup{},
	}

	var selectField, groupByClause, orderBy string
	if query.GroupBy != "" {
		var err error
		selectField, groupByClause, orderBy, err = groupColumns(query.GroupBy)
		if err != nil {
			return nil, err
		}
	}

	whereClause, args := reportWhere(query)

	overallQuery := fmt.Sprintf(`
		SELECT
			count() as observations,
			uniq(record_id) as unique_records,
			sum(count) as occurrences
		FROM %s FINAL
		%s
	`, observationsTable, whereClause)

	row := r.conn.QueryRow(ctx, overallQuery, args...)
	if err := row.Scan(&result.TotalObservations, &result.UniqueRecords, &result.TotalOccurrences); err != nil {
		return nil, fmt.Errorf("failed to query report totals: %w", err)
	}

	if query.GroupBy == "" {
		return result, nil
	}

	groupedQuery := fmt.Sprintf(`
		SELECT
			%s as group_value,
			count() as observations,
			sum(count) as occurrences
		FROM %s FINAL
		%s
		%s
		%s
	`, selectField, observationsTable, whereClause, groupByClause, orderBy)

	rows, err := r.conn.Query(ctx, groupedQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped report: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped report rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var group repository.ReportGroup
		if err := rows.Scan(&group.GroupValue, &group.Observations, &group.Occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan grouped report row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped report rows: %w", err)
	}

	return result, nil
}
