package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FetchFunc loads the latest value of a resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Recorder observes poll outcomes. Implemented by the metrics package.
type Recorder interface {
	ObservePoll(key, outcome string, elapsed time.Duration)
}

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

// State is what a view sees of a polled resource.
type State[T any] struct {
	Data      T
	HasData   bool
	Err       error
	Loading   bool
	UpdatedAt time.Time
	FailedAt  time.Time
}

// Query repeatedly fetches one resource and caches the latest result.
//
// Every fetch takes a sequence number when it starts. A completed fetch is
// applied only if no later-started fetch has been applied already, so a slow
// response can never overwrite a newer one.
type Query[T any] struct {
	key      string
	fetch    FetchFunc[T]
	interval time.Duration
	recorder Recorder
	log      *zap.Logger

	mu       sync.RWMutex
	state    State[T]
	issued   uint64
	applied  uint64
	inFlight int

	// applyMu serialises state application with listener notification so
	// listeners observe results in application order.
	applyMu   sync.Mutex
	listeners []func(T)

	refetch chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewQuery creates a query; call Start to begin polling.
func NewQuery[T any](key string, fetch FetchFunc[T], interval time.Duration, recorder Recorder, log *zap.Logger) *Query[T] {
	return &Query[T]{
		key:      key,
		fetch:    fetch,
		interval: interval,
		recorder: recorder,
		log:      log.With(zap.String("query", key)),
		refetch:  make(chan struct{}, 1),
	}
}

// Key returns the cache key.
func (q *Query[T]) Key() string {
	return q.key
}

// OnSuccess registers fn to receive every applied successful result.
// Register listeners before Start.
func (q *Query[T]) OnSuccess(fn func(T)) {
	q.applyMu.Lock()
	defer q.applyMu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// State returns a copy of the current state.
func (q *Query[T]) State() State[T] {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// Start fetches once and then on every interval tick until Stop or ctx is
// cancelled. Calling Start twice has no effect.
func (q *Query[T]) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})
	q.mu.Unlock()

	go q.run(loopCtx)
}

func (q *Query[T]) run(ctx context.Context) {
	defer close(q.done)

	q.Fetch(ctx)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.log.Debug("Polling stopped")
			return
		case <-ticker.C:
			q.Fetch(ctx)
		case <-q.refetch:
			q.Fetch(ctx)
			ticker.Reset(q.interval)
		}
	}
}

// Stop cancels polling and waits for the loop to exit.
func (q *Query[T]) Stop() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Invalidate asks the polling loop to refetch now. It never blocks; repeated
// calls before the loop picks one up collapse into a single refetch.
func (q *Query[T]) Invalidate() {
	select {
	case q.refetch <- struct{}{}:
	default:
	}
}

// Fetch runs one fetch and applies its result. It returns the fetch error,
// if any, even when the result was discarded as stale.
func (q *Query[T]) Fetch(ctx context.Context) error {
	q.mu.Lock()
	q.issued++
	seq := q.issued
	q.inFlight++
	q.state.Loading = true
	q.mu.Unlock()

	start := time.Now()
	data, err := q.fetch(ctx)
	elapsed := time.Since(start)

	q.applyMu.Lock()
	defer q.applyMu.Unlock()

	q.mu.Lock()
	q.inFlight--
	q.state.Loading = q.inFlight > 0
	if seq < q.applied {
		q.mu.Unlock()
		q.observe(OutcomeStale, elapsed)
		q.log.Debug("Discarded stale result", zap.Uint64("seq", seq), zap.Uint64("applied", q.applied))
		return err
	}
	q.applied = seq
	now := time.Now()
	if err != nil {
		q.state.Err = err
		q.state.FailedAt = now
		q.mu.Unlock()
		q.observe(OutcomeError, elapsed)
		q.log.Warn("Poll failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return err
	}
	q.state.Data = data
	q.state.HasData = true
	q.state.Err = nil
	q.state.UpdatedAt = now
	q.mu.Unlock()

	q.observe(OutcomeSuccess, elapsed)
	for _, fn := range q.listeners {
		fn(data)
	}
	return nil
}

func (q *Query[T]) observe(outcome string, elapsed time.Duration) {
	if q.recorder != nil {
		q.recorder.ObservePoll(q.key, outcome, elapsed)
	}
}
