package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/poller"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/queue"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

// Query keys. Mutations invalidate by prefix.
const (
	KeyStats                = "stats"
	KeyHealth               = "health"
	KeyErrors               = "errors"
	KeyMonitoringServices   = "monitoring:services"
	KeyMonitoringMetrics    = "monitoring:metrics"
	KeyMonitoringUptime     = "monitoring:uptime"
	KeyAnalyticsPerformance = "analytics:performance"
)

var (
	// ErrInvalidRequest marks errors caused by bad caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrReportsDisabled is returned by Report when no archive is configured.
	ErrReportsDisabled = errors.New("observation archive is not configured")

	errPublishQueueFull = errors.New("publish queue is full")
)

const (
	defaultPublishTimeout = 5 * time.Second
	publishQueueSize      = 32
)

// Options controls poll intervals and stream sizing.
type Options struct {
	Stream             stream.Options
	OverviewInterval   time.Duration
	MonitoringInterval time.Duration
	AnalyticsInterval  time.Duration
	MetricsTimeframe   string
	PublishTimeout     time.Duration
}

// OptionsFromConfig converts the DASHBOARD_* settings.
func OptionsFromConfig(cfg config.Dashboard) Options {
	return Options{
		Stream: stream.Options{
			MaxItems:   cfg.StreamMaxItems,
			FetchLimit: cfg.StreamFetchLimit,
			Interval:   time.Duration(cfg.StreamPollIntervalMs) * time.Millisecond,
		},
		OverviewInterval:   time.Duration(cfg.OverviewIntervalSec) * time.Second,
		MonitoringInterval: time.Duration(cfg.MonitoringIntervalSec) * time.Second,
		AnalyticsInterval:  time.Duration(cfg.AnalyticsIntervalSec) * time.Second,
		MetricsTimeframe:   cfg.MetricsTimeframe,
		PublishTimeout:     time.Duration(cfg.PublishTimeoutSec) * time.Second,
	}
}

// Deps are the optional collaborators of the service.
type Deps struct {
	Publisher queue.ObservationPublisher
	Reports   repository.ObservationRepository
	Recorder  Recorder
}

// DashboardService owns the polled state behind every dashboard page
type DashboardService struct {
	tracker   tracker.ErrorTracker
	opts      Options
	publisher queue.ObservationPublisher
	reports   repository.ObservationRepository
	recorder  Recorder
	log       *zap.Logger
	now       func() time.Time

	// Fresh stream records are published off the poll path.
	publishQueue chan []*domain.Observation
	publishStop  chan struct{}
	publishWG    sync.WaitGroup
	stopOnce     sync.Once

	cache       *poller.Cache
	live        *stream.Live
	stats       *poller.Query[*domain.Stats]
	health      *poller.Query[*domain.Health]
	services    *poller.Query[*domain.ServicesReport]
	sysMetrics  *poller.Query[*domain.SystemMetrics]
	uptime      *poller.Query[*domain.Uptime]
	performance *poller.Query[*domain.Performance]
}

// NewDashboardService creates the service. Nothing is fetched until Start.
func NewDashboardService(t tracker.ErrorTracker, opts Options, deps Deps, log *zap.Logger) *DashboardService {
	s := &DashboardService{
		tracker:   t,
		opts:      opts,
		publisher: deps.Publisher,
		reports:   deps.Reports,
		recorder:  deps.Recorder,
		log:       log,
		now:       time.Now,
		cache:     poller.NewCache(),

		publishQueue: make(chan []*domain.Observation, publishQueueSize),
		publishStop:  make(chan struct{}),
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.opts.PublishTimeout <= 0 {
		s.opts.PublishTimeout = defaultPublishTimeout
	}

	s.live = stream.NewLive(t, s.opts.Stream, s.recorder, s.recorder, log)
	if s.publisher != nil {
		s.live.OnFresh(s.publishFresh)
	}

	s.stats = poller.NewQuery(KeyStats, t.FetchStats, opts.OverviewInterval, s.recorder, log)
	s.health = poller.NewQuery(KeyHealth, t.CheckHealth, opts.OverviewInterval, s.recorder, log)
	s.services = poller.NewQuery(KeyMonitoringServices, t.FetchServices, opts.MonitoringInterval, s.recorder, log)
	s.sysMetrics = poller.NewQuery(KeyMonitoringMetrics, func(ctx context.Context) (*domain.SystemMetrics, error) {
		return t.FetchSystemMetrics(ctx, opts.MetricsTimeframe)
	}, opts.MonitoringInterval, s.recorder, log)
	s.uptime = poller.NewQuery(KeyMonitoringUptime, t.FetchUptime, opts.MonitoringInterval, s.recorder, log)
	s.performance = poller.NewQuery(KeyAnalyticsPerformance, t.FetchPerformance, opts.AnalyticsInterval, s.recorder, log)

	s.cache.Register(s.live.Query())
	s.cache.Register(s.stats)
	s.cache.Register(s.health)
	s.cache.Register(s.services)
	s.cache.Register(s.sysMetrics)
	s.cache.Register(s.uptime)
	s.cache.Register(s.performance)

	return s
}

// Start begins polling every registered query.
func (s *DashboardService) Start(ctx context.Context) {
	s.log.Info("Starting dashboard polling", zap.Strings("queries", s.cache.Keys()))
	s.startPublisher(ctx)
	s.cache.StartAll(ctx)
}

// Stop ends polling, flushes queued publishes and closes stream subscribers.
func (s *DashboardService) Stop() {
	s.cache.StopAll()
	s.stopPublisher()
	s.live.Stop()
	s.log.Info("Dashboard polling stopped")
}

// Invalidate forces a refetch of every query under prefix.
func (s *DashboardService) Invalidate(prefix string) int {
	return s.cache.Invalidate(prefix)
}

func (s *DashboardService) publishFresh(records []domain.ErrorRecord) {
	if len(records) == 0 {
		return
	}
	observedAt := s.now()
	observations := make([]*domain.Observation, 0, len(records))
	for _, r := range records {
		observations = append(observations, domain.NewObservation(r, observedAt))
	}

	// Runs under the stream query's listener lock, so it must not block.
	select {
	case s.publishQueue <- observations:
	default:
		s.recorder.ObservePublish(len(observations), errPublishQueueFull)
		s.log.Warn("Dropping stream observations, publish queue is full",
			zap.Int("count", len(observations)))
	}
}

func (s *DashboardService) startPublisher(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	s.publishWG.Add(1)
	go s.runPublisher(ctx)
}

// stopPublisher waits for queued batches to be published.
func (s *DashboardService) stopPublisher() {
	s.stopOnce.Do(func() { close(s.publishStop) })
	s.publishWG.Wait()
}

func (s *DashboardService) runPublisher(ctx context.Context) {
	defer s.publishWG.Done()

	for {
		select {
		case observations := <-s.publishQueue:
			s.publish(ctx, observations)
		case <-s.publishStop:
			s.drainPublishQueue(ctx)
			return
		case <-ctx.Done():
			s.drainPublishQueue(ctx)
			return
		}
	}
}

func (s *DashboardService) drainPublishQueue(ctx context.Context) {
	for {
		select {
		case observations := <-s.publishQueue:
			s.publish(ctx, observations)
		default:
			return
		}
	}
}

func (s *DashboardService) publish(ctx context.Context, observations []*domain.Observation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PublishTimeout)
	defer cancel()

	err := s.publisher.PublishObservations(ctx, observations)
	s.recorder.ObservePublish(len(observations), err)
	if err != nil {
		s.log.Warn("Failed to publish stream observations",
			zap.Int("count", len(observations)),
			zap.Error(err))
	}
}

// Health reports the dashboard's view of its dependencies.
func (s *DashboardService) Health(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{Status: "ok", Tracker: "unknown"}

	state := s.health.State()
	switch {
	case state.HasData && state.Err == nil:
		resp.Tracker = state.Data.Status
	case state.Err != nil:
		resp.Tracker = "unreachable"
	}

	if s.reports != nil {
		resp.Archive = "ok"
		if err := s.reports.Ping(ctx); err != nil {
			s.log.Warn("Archive ping failed", zap.Error(err))
			resp.Archive = "unreachable"
			resp.Status = "degraded"
		}
	}
	return resp
}

func (s *DashboardService) Overview() views.Overview {
	return views.Overview{
		Health: views.NewPanel(s.health.State(), views.NewAPIHealth),
		Stats:  views.NewPanel(s.stats.State(), views.NewStatsSummary),
		Stream: s.Stream(),
	}
}

func (s *DashboardService) Stream() views.StreamView {
	return views.NewStreamView(s.live.Status(), s.now())
}

func (s *DashboardService) AcknowledgeStream() views.StreamView {
	s.live.Acknowledge()
	return s.Stream()
}

func (s *DashboardService) PauseStream() views.StreamView {
	s.live.Pause()
	return s.Stream()
}

func (s *DashboardService) ResumeStream() views.StreamView {
	s.live.Resume()
	return s.Stream()
}

func (s *DashboardService) RefreshStream() views.StreamView {
	s.live.Refresh()
	return s.Stream()
}

func (s *DashboardService) SubscribeStream() (<-chan stream.Snapshot, func()) {
	return s.live.Subscribe()
}

func (s *DashboardService) Monitoring() views.Monitoring {
	return views.Monitoring{
		Services: views.NewPanel(s.services.State(), views.NewServiceRows),
		Metrics:  views.NewPanel(s.sysMetrics.State(), views.NewResourceUsage),
		Uptime:   views.NewPanel(s.uptime.State(), views.NewUptimeSummary),
	}
}

func (s *DashboardService) Uptime() views.UptimePage {
	return views.UptimePage{
		Overall:  views.NewPanel(s.uptime.State(), views.NewUptimeSummary),
		Services: views.NewPanel(s.services.State(), views.NewServiceRows),
	}
}

func (s *DashboardService) Analytics() views.Analytics {
	return views.Analytics{
		Summary:     views.NewPanel(s.stats.State(), views.NewAnalyticsSummary),
		Performance: s.Performance(),
	}
}

func (s *DashboardService) Performance() views.Panel[views.PerformanceView] {
	return views.NewPanel(s.performance.State(), views.NewPerformanceView)
}

var _ DashboardServicer = (*DashboardService)(nil)
