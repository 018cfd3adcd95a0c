package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
)

// scriptedTracker serves one scripted FetchErrors response per call and
// repeats the last one once the script runs out.
type scriptedTracker struct {
	tracker.ErrorTracker

	mu      sync.Mutex
	script  []fetchResult
	calls   int
	queries []tracker.ErrorQuery
}

type fetchResult struct {
	ids []string
	err error
}

func (s *scriptedTracker) FetchErrors(ctx context.Context, query tracker.ErrorQuery) (*domain.ErrorList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	res := s.script[idx]
	if res.err != nil {
		return nil, res.err
	}
	list := records(res.ids...)
	return &domain.ErrorList{Errors: list, Total: len(list)}, nil
}

type mergeCall struct {
	fresh, size, newCount int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []mergeCall
}

func (r *fakeRecorder) ObserveMerge(fresh, size, newCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, mergeCall{fresh, size, newCount})
}

func newTestLive(tr *scriptedTracker, rec Recorder) *Live {
	return NewLive(tr, Options{MaxItems: 3, FetchLimit: 20, Interval: time.Hour}, nil, rec, zap.NewNop())
}

func TestLive_FetchesWithConfiguredLimit(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a"}}}}
	live := newTestLive(tr, nil)

	require.NoError(t, live.Query().Fetch(context.Background()))

	require.Len(t, tr.queries, 1)
	assert.Equal(t, 20, tr.queries[0].Limit)
	assert.Equal(t, 0, tr.queries[0].Offset)
}

func TestLive_MergesPollResults(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{
		{ids: []string{"a", "b"}},
		{ids: []string{"b", "c", "d"}},
	}}
	rec := &fakeRecorder{}
	live := newTestLive(tr, rec)

	var fresh [][]string
	live.OnFresh(func(recs []domain.ErrorRecord) { fresh = append(fresh, ids(recs)) })

	require.NoError(t, live.Query().Fetch(context.Background()))
	require.NoError(t, live.Query().Fetch(context.Background()))

	snap := live.Snapshot()
	assert.Equal(t, []string{"c", "d", "a"}, ids(snap.Items))
	assert.Equal(t, 4, snap.NewCount)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, fresh)
	assert.Equal(t, []mergeCall{{2, 2, 2}, {2, 3, 4}}, rec.calls)
}

func TestLive_FetchErrorKeepsBuffer(t *testing.T) {
	fail := &tracker.NetworkError{Method: "GET", URL: "http://tracker/api/errors", Err: context.DeadlineExceeded}
	tr := &scriptedTracker{script: []fetchResult{
		{ids: []string{"a", "b"}},
		{err: fail},
	}}
	live := newTestLive(tr, nil)

	require.NoError(t, live.Query().Fetch(context.Background()))
	err := live.Query().Fetch(context.Background())

	var netErr *tracker.NetworkError
	assert.True(t, errors.As(err, &netErr))
	status := live.Status()
	assert.Equal(t, []string{"a", "b"}, ids(status.Items))
	assert.Equal(t, 2, status.NewCount)
	assert.Error(t, status.Err)
	assert.False(t, status.LastPollAt.IsZero())
}

func TestLive_PausedDiscardsResults(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{
		{ids: []string{"a"}},
		{ids: []string{"b", "c"}},
	}}
	live := newTestLive(tr, nil)
	var freshCalls int
	live.OnFresh(func([]domain.ErrorRecord) { freshCalls++ })

	require.NoError(t, live.Query().Fetch(context.Background()))
	live.Pause()
	require.NoError(t, live.Query().Fetch(context.Background()))

	snap := live.Snapshot()
	assert.True(t, snap.Paused)
	assert.Equal(t, []string{"a"}, ids(snap.Items))
	assert.Equal(t, 1, snap.NewCount)
	assert.Equal(t, 1, freshCalls)

	live.Resume()
	snap = live.Snapshot()
	assert.False(t, snap.Paused)
	assert.Equal(t, 0, snap.NewCount)
	assert.Equal(t, []string{"a"}, ids(snap.Items))
}

func TestLive_AcknowledgeAndRefresh(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a", "b"}}}}
	live := newTestLive(tr, nil)
	require.NoError(t, live.Query().Fetch(context.Background()))

	live.Acknowledge()
	assert.Equal(t, 0, live.Snapshot().NewCount)
	assert.Len(t, live.Snapshot().Items, 2)

	live.Refresh()
	snap := live.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.NewCount)
}

func TestLive_SubscribeReceivesChanges(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a"}}}}
	live := newTestLive(tr, nil)

	updates, cancel := live.Subscribe()
	defer cancel()

	require.NoError(t, live.Query().Fetch(context.Background()))

	select {
	case snap := <-updates:
		assert.Equal(t, []string{"a"}, ids(snap.Items))
	case <-time.After(time.Second):
		t.Fatal("no snapshot after merge")
	}

	// Same result again changes nothing, so nothing is sent.
	require.NoError(t, live.Query().Fetch(context.Background()))
	select {
	case snap := <-updates:
		t.Fatalf("unexpected snapshot: %+v", snap)
	default:
	}
}

func TestLive_SlowSubscriberGetsLatest(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a"}}}}
	live := newTestLive(tr, nil)
	updates, cancel := live.Subscribe()
	defer cancel()

	require.NoError(t, live.Query().Fetch(context.Background()))
	live.Acknowledge()
	live.Pause()

	snap := <-updates
	assert.True(t, snap.Paused)
	assert.Equal(t, 0, snap.NewCount)
}

func TestLive_UnsubscribeClosesChannel(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a"}}}}
	live := newTestLive(tr, nil)

	updates, cancel := live.Subscribe()
	cancel()
	cancel()

	_, ok := <-updates
	assert.False(t, ok)
}

func TestLive_StopClosesSubscribers(t *testing.T) {
	tr := &scriptedTracker{script: []fetchResult{{ids: []string{"a"}}}}
	live := NewLive(tr, Options{MaxItems: 3, Interval: 5 * time.Millisecond}, nil, nil, zap.NewNop())
	updates, cancel := live.Subscribe()
	defer cancel()

	live.Start(context.Background())
	assert.Eventually(t, func() bool { return live.Snapshot().NewCount == 1 }, time.Second, time.Millisecond)
	live.Stop()

	for range updates {
	}

	late, _ := live.Subscribe()
	_, ok := <-late
	assert.False(t, ok, "subscribing after Stop yields a closed channel")
}
