package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

var testNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

// MockErrorTracker is a mock implementation of tracker.ErrorTracker
type MockErrorTracker struct {
	mock.Mock
}

func (m *MockErrorTracker) CheckHealth(ctx context.Context) (*domain.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Health), args.Error(1)
}

func (m *MockErrorTracker) FetchErrors(ctx context.Context, query tracker.ErrorQuery) (*domain.ErrorList, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ErrorList), args.Error(1)
}

func (m *MockErrorTracker) FetchErrorByID(ctx context.Context, id string) (*domain.ErrorRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ErrorRecord), args.Error(1)
}

func (m *MockErrorTracker) ResolveError(ctx context.Context, id string) (*domain.ResolveResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolveResult), args.Error(1)
}

func (m *MockErrorTracker) DeleteError(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockErrorTracker) FetchStats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

func (m *MockErrorTracker) FetchServices(ctx context.Context) (*domain.ServicesReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServicesReport), args.Error(1)
}

func (m *MockErrorTracker) FetchSystemMetrics(ctx context.Context, timeframe string) (*domain.SystemMetrics, error) {
	args := m.Called(ctx, timeframe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemMetrics), args.Error(1)
}

func (m *MockErrorTracker) FetchUptime(ctx context.Context) (*domain.Uptime, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Uptime), args.Error(1)
}

func (m *MockErrorTracker) FetchTrends(ctx context.Context, query tracker.TrendQuery) (*domain.Trends, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trends), args.Error(1)
}

func (m *MockErrorTracker) FetchPerformance(ctx context.Context) (*domain.Performance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Performance), args.Error(1)
}

func (m *MockErrorTracker) FetchAlertRules(ctx context.Context) (*domain.AlertRules, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlertRules), args.Error(1)
}

func (m *MockErrorTracker) FetchIncidents(ctx context.Context) (*domain.Incidents, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Incidents), args.Error(1)
}

// MockObservationPublisher is a mock implementation of queue.ObservationPublisher
type MockObservationPublisher struct {
	mock.Mock
}

func (m *MockObservationPublisher) PublishObservations(ctx context.Context, observations []*domain.Observation) error {
	args := m.Called(ctx, observations)
	return args.Error(0)
}

// MockObservationRepository is a mock implementation of repository.ObservationRepository
type MockObservationRepository struct {
	mock.Mock
}

func (m *MockObservationRepository) InsertBatch(ctx context.Context, observations []*domain.Observation) (int, error) {
	args := m.Called(ctx, observations)
	return args.Int(0), args.Error(1)
}

func (m *MockObservationRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockObservationRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockObservationRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockObservationRepository) GetReport(ctx context.Context, query repository.ReportQuery) (*repository.ReportResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReportResult), args.Error(1)
}

type mutationRecorder struct {
	nopRecorder
	mu            sync.Mutex
	ops           []string
	published     []int
	publishErrors []error
}

func (r *mutationRecorder) ObserveMutation(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op+":"+outcome)
}

func (r *mutationRecorder) ObservePublish(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, n)
	r.publishErrors = append(r.publishErrors, err)
}

func (r *mutationRecorder) publishes() ([]int, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.published...), append([]error(nil), r.publishErrors...)
}

func newTestService(t *testing.T, mt *MockErrorTracker, deps Deps) *DashboardService {
	t.Helper()
	s := NewDashboardService(mt, Options{
		Stream:           stream.Options{MaxItems: 3, FetchLimit: 20, Interval: time.Hour},
		MetricsTimeframe: "1h",
	}, deps, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func record(id string, count int) domain.ErrorRecord {
	return domain.ErrorRecord{
		ID:       id,
		Level:    domain.LevelError,
		Message:  "boom " + id,
		Source:   "checkout-api",
		Count:    count,
		LastSeen: testNow.Add(-time.Minute),
	}
}

func TestDashboardService_RegistersQueries(t *testing.T) {
	s := newTestService(t, new(MockErrorTracker), Deps{})

	assert.Equal(t, []string{
		KeyAnalyticsPerformance,
		stream.Key,
		KeyHealth,
		KeyMonitoringMetrics,
		KeyMonitoringServices,
		KeyMonitoringUptime,
		KeyStats,
	}, s.cache.Keys())
}

func TestDashboardService_Overview_LoadingBeforeFirstPoll(t *testing.T) {
	s := newTestService(t, new(MockErrorTracker), Deps{})

	overview := s.Overview()

	assert.Equal(t, views.PanelLoading, overview.Health.State)
	assert.Equal(t, views.PanelLoading, overview.Stats.State)
	assert.Empty(t, overview.Stream.Rows)
}

func TestDashboardService_Overview_IndependentPanels(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchStats", mock.Anything).Return(&domain.Stats{TotalErrors: 10, ResolvedErrors: 4}, nil)
	mt.On("CheckHealth", mock.Anything).Return(nil, &tracker.NetworkError{Method: "GET", URL: "/health", Err: context.DeadlineExceeded})

	s := newTestService(t, mt, Deps{})
	ctx := context.Background()
	require.NoError(t, s.stats.Fetch(ctx))
	require.Error(t, s.health.Fetch(ctx))

	overview := s.Overview()

	assert.Equal(t, views.PanelError, overview.Health.State)
	assert.Equal(t, views.FailureMessage, overview.Health.Message)
	require.Equal(t, views.PanelReady, overview.Stats.State)
	assert.Equal(t, 6, overview.Stats.Data.UnresolvedCount)
	assert.Equal(t, 40, overview.Stats.Data.ResolvedRate)
}

func TestDashboardService_Monitoring_UsesConfiguredTimeframe(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchSystemMetrics", mock.Anything, "1h").Return(&domain.SystemMetrics{CPUUsagePercent: 42}, nil)

	s := newTestService(t, mt, Deps{})
	require.NoError(t, s.sysMetrics.Fetch(context.Background()))

	monitoring := s.Monitoring()

	assert.Equal(t, views.PanelReady, monitoring.Metrics.State)
	assert.Equal(t, views.PanelLoading, monitoring.Services.State)
	mt.AssertExpectations(t)
}

func TestDashboardService_Stream_MergeAndPublish(t *testing.T) {
	mt := new(MockErrorTracker)
	mp := new(MockObservationPublisher)
	rec := &mutationRecorder{}

	mt.On("FetchErrors", mock.Anything, tracker.ErrorQuery{Limit: 20}).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{record("a", 1), record("b", 1)}}, nil).Once()
	mp.On("PublishObservations", mock.Anything, mock.MatchedBy(func(obs []*domain.Observation) bool {
		return len(obs) == 2 && obs[0].RecordID == "a" && obs[1].RecordID == "b" && obs[0].ObservedAt.Equal(testNow)
	})).Return(nil).Once()

	s := newTestService(t, mt, Deps{Publisher: mp, Recorder: rec})
	s.startPublisher(context.Background())
	t.Cleanup(s.stopPublisher)
	require.NoError(t, s.live.Query().Fetch(context.Background()))

	view := s.Stream()
	require.Len(t, view.Rows, 2)
	assert.Equal(t, 2, view.NewCount)
	assert.True(t, view.ShowBadge)
	assert.Eventually(t, func() bool {
		published, _ := rec.publishes()
		return assert.ObjectsAreEqual([]int{2}, published)
	}, time.Second, 5*time.Millisecond)

	view = s.AcknowledgeStream()
	assert.Equal(t, 0, view.NewCount)
	assert.False(t, view.ShowBadge)

	mt.AssertExpectations(t)
	mp.AssertExpectations(t)
}

func TestDashboardService_Stream_PublishFailureDoesNotAffectBuffer(t *testing.T) {
	mt := new(MockErrorTracker)
	mp := new(MockObservationPublisher)

	mt.On("FetchErrors", mock.Anything, mock.Anything).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{record("a", 1)}}, nil)
	mp.On("PublishObservations", mock.Anything, mock.Anything).Return(errors.New("queue unavailable"))

	s := newTestService(t, mt, Deps{Publisher: mp})
	s.startPublisher(context.Background())
	require.NoError(t, s.live.Query().Fetch(context.Background()))
	s.stopPublisher()

	assert.Len(t, s.Stream().Rows, 1)
	mp.AssertNumberOfCalls(t, "PublishObservations", 1)
}

func TestDashboardService_Stream_SlowPublishDoesNotBlockPoll(t *testing.T) {
	mt := new(MockErrorTracker)
	mp := new(MockObservationPublisher)
	rec := &mutationRecorder{}

	mt.On("FetchErrors", mock.Anything, mock.Anything).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{record("a", 1)}}, nil).Once()
	mt.On("FetchErrors", mock.Anything, mock.Anything).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{record("a", 1), record("b", 1)}}, nil).Once()

	release := make(chan struct{})
	mp.On("PublishObservations", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	s := newTestService(t, mt, Deps{Publisher: mp, Recorder: rec})
	s.startPublisher(context.Background())

	polled := make(chan error, 2)
	go func() {
		polled <- s.live.Query().Fetch(context.Background())
		polled <- s.live.Query().Fetch(context.Background())
	}()

	for n := 0; n < 2; n++ {
		select {
		case err := <-polled:
			require.NoError(t, err)
		case <-time.After(time.Second):
			close(release)
			t.Fatal("stream poll waited on the publisher")
		}
	}
	assert.Len(t, s.Stream().Rows, 2)

	close(release)
	s.stopPublisher()

	published, _ := rec.publishes()
	assert.Equal(t, []int{1, 1}, published)
}

func TestDashboardService_Stream_PublishQueueFullDrops(t *testing.T) {
	mp := new(MockObservationPublisher)
	rec := &mutationRecorder{}
	s := newTestService(t, new(MockErrorTracker), Deps{Publisher: mp, Recorder: rec})

	// Nothing is draining the queue yet.
	for n := 0; n < publishQueueSize+1; n++ {
		s.publishFresh([]domain.ErrorRecord{record("a", 1)})
	}

	published, errs := rec.publishes()
	require.Equal(t, []int{1}, published)
	assert.ErrorIs(t, errs[0], errPublishQueueFull)
	mp.AssertNotCalled(t, "PublishObservations", mock.Anything, mock.Anything)
}

func TestDashboardService_Stop_FlushesQueuedPublishes(t *testing.T) {
	mp := new(MockObservationPublisher)
	mp.On("PublishObservations", mock.Anything, mock.Anything).Return(nil)
	s := newTestService(t, new(MockErrorTracker), Deps{Publisher: mp})

	for n := 0; n < 3; n++ {
		s.publishFresh([]domain.ErrorRecord{record("a", 1)})
	}
	s.startPublisher(context.Background())
	s.stopPublisher()

	mp.AssertNumberOfCalls(t, "PublishObservations", 3)
}

func TestDashboardService_Stream_PauseResume(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchErrors", mock.Anything, mock.Anything).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{record("a", 1)}}, nil)

	s := newTestService(t, mt, Deps{})

	view := s.PauseStream()
	assert.True(t, view.Paused)

	require.NoError(t, s.live.Query().Fetch(context.Background()))
	assert.Empty(t, s.Stream().Rows)

	view = s.ResumeStream()
	assert.False(t, view.Paused)

	require.NoError(t, s.live.Query().Fetch(context.Background()))
	assert.Len(t, s.Stream().Rows, 1)
}

func TestDashboardService_ListErrors(t *testing.T) {
	mt := new(MockErrorTracker)
	resolved := false
	mt.On("FetchErrors", mock.Anything, tracker.ErrorQuery{Limit: 20, Level: domain.LevelError, Resolved: &resolved}).
		Return(&domain.ErrorList{Errors: []domain.ErrorRecord{}, Total: 0}, nil)

	s := newTestService(t, mt, Deps{})
	table, err := s.ListErrors(context.Background(), &dto.ListErrorsRequest{Level: "error", Resolved: &resolved})

	require.NoError(t, err)
	assert.True(t, table.Empty)
	assert.Equal(t, views.EmptyMessage, table.Message)
	mt.AssertExpectations(t)
}

func TestDashboardService_ListErrors_FetchError(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchErrors", mock.Anything, mock.Anything).
		Return(nil, &tracker.HTTPError{Method: "GET", URL: "/api/errors", Status: 500, StatusText: "Internal Server Error"})

	s := newTestService(t, mt, Deps{})
	table, err := s.ListErrors(context.Background(), &dto.ListErrorsRequest{})

	assert.Nil(t, table)
	var httpErr *tracker.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestDashboardService_GetError_NotFound(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchErrorByID", mock.Anything, "missing").
		Return(nil, &tracker.HTTPError{Method: "GET", URL: "/api/errors/missing", Status: 404, StatusText: "Not Found"})

	s := newTestService(t, mt, Deps{})
	_, err := s.GetError(context.Background(), "missing")

	assert.True(t, tracker.IsNotFound(err))
}

func TestDashboardService_ResolveError_Success(t *testing.T) {
	mt := new(MockErrorTracker)
	rec := &mutationRecorder{}
	mt.On("ResolveError", mock.Anything, "err_1").Return(&domain.ResolveResult{Status: "resolved"}, nil)

	s := newTestService(t, mt, Deps{Recorder: rec})
	resp, err := s.ResolveError(context.Background(), "err_1")

	require.NoError(t, err)
	assert.Equal(t, &dto.ResolveResponse{ID: "err_1", Status: "resolved"}, resp)
	assert.Equal(t, []string{"resolve:success"}, rec.ops)
	mt.AssertExpectations(t)
}

func TestDashboardService_ResolveError_FailureLeavesStateUnchanged(t *testing.T) {
	mt := new(MockErrorTracker)
	rec := &mutationRecorder{}
	mt.On("FetchStats", mock.Anything).Return(&domain.Stats{TotalErrors: 3}, nil)
	mt.On("ResolveError", mock.Anything, "err_1").
		Return(nil, &tracker.HTTPError{Method: "PUT", URL: "/api/errors/err_1/resolve", Status: 500, StatusText: "Internal Server Error"})

	s := newTestService(t, mt, Deps{Recorder: rec})
	require.NoError(t, s.stats.Fetch(context.Background()))
	before := s.stats.State()

	resp, err := s.ResolveError(context.Background(), "err_1")

	assert.Nil(t, resp)
	assert.Error(t, err)
	assert.Equal(t, before, s.stats.State())
	assert.Equal(t, []string{"resolve:error"}, rec.ops)
}

func TestDashboardService_DeleteError(t *testing.T) {
	mt := new(MockErrorTracker)
	rec := &mutationRecorder{}
	mt.On("DeleteError", mock.Anything, "err_1").Return(nil).Once()
	mt.On("DeleteError", mock.Anything, "err_2").Return(&tracker.NetworkError{Method: "DELETE", Err: context.Canceled}).Once()

	s := newTestService(t, mt, Deps{Recorder: rec})

	assert.NoError(t, s.DeleteError(context.Background(), "err_1"))
	assert.Error(t, s.DeleteError(context.Background(), "err_2"))
	assert.Equal(t, []string{"delete:success", "delete:error"}, rec.ops)
}

func TestDashboardService_Trends(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchTrends", mock.Anything, tracker.TrendQuery{Period: "7d", GroupBy: "day"}).
		Return(&domain.Trends{Period: "7d", GroupBy: "day", Points: []domain.TrendPoint{{Bucket: "2026-03-01", Count: 4}}}, nil)

	s := newTestService(t, mt, Deps{})
	summary, err := s.Trends(context.Background(), &dto.TrendsRequest{Period: "7d", GroupBy: "day"})

	require.NoError(t, err)
	require.NotNil(t, summary)
	mt.AssertExpectations(t)
}

func TestDashboardService_Alerts(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchAlertRules", mock.Anything).Return(&domain.AlertRules{Rules: []domain.AlertRule{
		{ID: "r1", Enabled: true},
		{ID: "r2", Enabled: false},
	}}, nil)
	mt.On("FetchIncidents", mock.Anything).Return(&domain.Incidents{Incidents: []domain.Incident{
		{ID: "i1", Status: "open"},
	}}, nil)

	s := newTestService(t, mt, Deps{})
	alerts, err := s.Alerts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, alerts.EnabledRules)
	assert.Equal(t, 1, alerts.OpenIncidents)
}

func TestDashboardService_Alerts_PartialFailure(t *testing.T) {
	mt := new(MockErrorTracker)
	mt.On("FetchAlertRules", mock.Anything).Return(&domain.AlertRules{}, nil)
	mt.On("FetchIncidents", mock.Anything).Return(nil, errors.New("boom"))

	s := newTestService(t, mt, Deps{})
	alerts, err := s.Alerts(context.Background())

	assert.Nil(t, alerts)
	assert.Error(t, err)
}

func TestDashboardService_Health(t *testing.T) {
	mt := new(MockErrorTracker)
	repo := new(MockObservationRepository)
	mt.On("CheckHealth", mock.Anything).Return(&domain.Health{Status: "ok"}, nil)
	repo.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	s := newTestService(t, mt, Deps{Reports: repo})
	require.NoError(t, s.health.Fetch(context.Background()))

	health := s.Health(context.Background())

	assert.Equal(t, dto.HealthResponse{Status: "degraded", Tracker: "ok", Archive: "unreachable"}, health)
}

func TestDashboardService_Report_Disabled(t *testing.T) {
	s := newTestService(t, new(MockErrorTracker), Deps{})

	_, err := s.Report(context.Background(), &dto.ReportRequest{From: 1, To: 2})

	assert.ErrorIs(t, err, ErrReportsDisabled)
}

func TestDashboardService_Report_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.ReportRequest
	}{
		{name: "from after to", req: dto.ReportRequest{From: 200, To: 100}},
		{name: "unknown group_by", req: dto.ReportRequest{From: 100, To: 200, GroupBy: "channel"}},
		{name: "hourly range too large", req: dto.ReportRequest{From: 0, To: 91 * 24 * 3600, GroupBy: "hour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockObservationRepository)
			s := newTestService(t, new(MockErrorTracker), Deps{Reports: repo})

			_, err := s.Report(context.Background(), &tt.req)

			assert.ErrorIs(t, err, ErrInvalidRequest)
			repo.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardService_Report_Success(t *testing.T) {
	repo := new(MockObservationRepository)
	repo.On("GetReport", mock.Anything, repository.ReportQuery{
		From:    time.Unix(1000, 0).UTC(),
		To:      time.Unix(2000, 0).UTC(),
		Level:   "error",
		GroupBy: "source",
	}).Return(&repository.ReportResult{
		TotalObservations: 12,
		UniqueRecords:     3,
		TotalOccurrences:  40,
		Groups: []repository.ReportGroup{
			{GroupValue: "checkout-api", Observations: 8, Occurrences: 30},
			{GroupValue: "search", Observations: 4, Occurrences: 10},
		},
	}, nil)

	s := newTestService(t, new(MockErrorTracker), Deps{Reports: repo})
	resp, err := s.Report(context.Background(), &dto.ReportRequest{From: 1000, To: 2000, GroupBy: "source", Level: "error"})

	require.NoError(t, err)
	assert.Equal(t, uint64(12), resp.TotalObservations)
	assert.Equal(t, uint64(3), resp.UniqueRecords)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "checkout-api", resp.Groups[0].GroupValue)
	repo.AssertExpectations(t)
}
