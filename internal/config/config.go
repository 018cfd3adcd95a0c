package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service    Service    `envconfig:"SERVICE"`
	Tracker    Tracker    `envconfig:"TRACKER"`
	Dashboard  Dashboard  `envconfig:"DASHBOARD"`
	SQS        SQS        `envconfig:"SQS"`
	ClickHouse ClickHouse `envconfig:"CLICKHOUSE"`
	Valkey     Valkey     `envconfig:"VALKEY"`
	Consumer   Consumer   `envconfig:"CONSUMER"`
}

type Service struct {
	Environment string `envconfig:"ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"API_PORT" default:"8080"`
	Host        string `envconfig:"HOST" default:"localhost:8080"`
}

// Tracker configures the outbound client for the error-tracking service.
type Tracker struct {
	BaseURL           string  `envconfig:"BASE_URL" required:"true"`
	APIKey            string  `envconfig:"API_KEY" required:"true"`
	TimeoutSec        int     `envconfig:"TIMEOUT_SEC" default:"10"`
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND" default:"0"`
	Burst             int     `envconfig:"BURST" default:"1"`
}

// Timeout returns the per-request timeout.
func (t Tracker) Timeout() time.Duration {
	return time.Duration(t.TimeoutSec) * time.Second
}

type Dashboard struct {
	StreamMaxItems        int    `envconfig:"STREAM_MAX_ITEMS" default:"10"`
	StreamFetchLimit      int    `envconfig:"STREAM_FETCH_LIMIT" default:"20"`
	StreamPollIntervalMs  int    `envconfig:"STREAM_POLL_INTERVAL_MS" default:"2000"`
	OverviewIntervalSec   int    `envconfig:"OVERVIEW_INTERVAL_SEC" default:"30"`
	MonitoringIntervalSec int    `envconfig:"MONITORING_INTERVAL_SEC" default:"30"`
	AnalyticsIntervalSec  int    `envconfig:"ANALYTICS_INTERVAL_SEC" default:"60"`
	PublishTimeoutSec     int    `envconfig:"PUBLISH_TIMEOUT_SEC" default:"5"`
	MetricsTimeframe      string `envconfig:"METRICS_TIMEFRAME" default:"1h"`
}

type SQS struct {
	Endpoint string `envconfig:"ENDPOINT"`
	QueueURL string `envconfig:"QUEUE_URL"`
	Region   string `envconfig:"REGION" default:"eu-central-1"`
}

// Enabled reports whether an observation queue is configured.
func (s SQS) Enabled() bool {
	return s.QueueURL != ""
}

type ClickHouse struct {
	Host            string `envconfig:"HOST"`
	Port            string `envconfig:"PORT" default:"9000"`
	Database        string `envconfig:"DB" default:"default"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	UseTLS          bool   `envconfig:"USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// Enabled reports whether an observation archive is configured.
func (c ClickHouse) Enabled() bool {
	return c.Host != ""
}

type Valkey struct {
	Host                string `envconfig:"HOST"`
	Port                string `envconfig:"PORT" default:"6379"`
	Password            string `envconfig:"PASSWORD" default:""`
	DB                  int    `envconfig:"DB" default:"0"`
	IdempotencyEnabled  bool   `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyFailOpen bool   `envconfig:"IDEMPOTENCY_FAIL_OPEN" default:"true"`
	IdempotencyTTLSec   int    `envconfig:"IDEMPOTENCY_TTL_SEC" default:"86400"`
}

type Consumer struct {
	BatchSizeMax       int    `envconfig:"BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec    int    `envconfig:"BATCH_TIMEOUT_SEC" default:"10"`
	ShutdownTimeoutSec int    `envconfig:"SHUTDOWN_TIMEOUT_SEC" default:"10"`
	HealthCheckPort    string `envconfig:"HEALTH_CHECK_PORT" default:"8081"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// LoadTracker reads only the TRACKER_* section, for tools that talk to the
// error-tracking service directly.
func LoadTracker() (*Tracker, error) {
	_ = godotenv.Load()

	var cfg Tracker
	if err := envconfig.Process("TRACKER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process tracker config: %w", err)
	}

	return &cfg, nil
}
