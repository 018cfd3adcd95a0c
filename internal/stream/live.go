package stream

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/poller"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
)

// Key identifies the live stream query in a poller.Cache.
const Key = "errors:live-stream"

const (
	DefaultFetchLimit = 20
	DefaultInterval   = 2 * time.Second
)

// Options configures a Live stream.
type Options struct {
	MaxItems   int
	FetchLimit int
	Interval   time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.FetchLimit <= 0 {
		o.FetchLimit = DefaultFetchLimit
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Recorder observes buffer changes. Implemented by the metrics package.
type Recorder interface {
	ObserveMerge(fresh, size, newCount int)
}

// Status is a Snapshot plus the state of the underlying poll.
type Status struct {
	Snapshot
	Loading    bool      `json:"loading"`
	Err        error     `json:"-"`
	LastPollAt time.Time `json:"last_poll_at"`
}

// Live polls the newest errors and merges them into a Buffer.
type Live struct {
	query    *poller.Query[*domain.ErrorList]
	recorder Recorder
	log      *zap.Logger

	mu      sync.Mutex
	buf     *Buffer
	subs    map[int]chan Snapshot
	nextSub int
	onFresh []func([]domain.ErrorRecord)
	stopped bool
}

// NewLive builds a stream over t. Call Start to begin polling.
func NewLive(t tracker.ErrorTracker, opts Options, pollRecorder poller.Recorder, recorder Recorder, log *zap.Logger) *Live {
	opts = opts.withDefaults()
	query := tracker.ErrorQuery{Limit: opts.FetchLimit}

	l := &Live{
		recorder: recorder,
		log:      log.With(zap.String("stream", Key)),
		buf:      NewBuffer(opts.MaxItems),
		subs:     make(map[int]chan Snapshot),
	}
	l.query = poller.NewQuery(Key, func(ctx context.Context) (*domain.ErrorList, error) {
		return t.FetchErrors(ctx, query)
	}, opts.Interval, pollRecorder, log)
	l.query.OnSuccess(l.merge)
	return l
}

// Query exposes the underlying poll so it can be registered in a cache.
func (l *Live) Query() *poller.Query[*domain.ErrorList] {
	return l.query
}

// OnFresh registers fn to receive every non-empty set of fresh records.
// fn runs on the polling goroutine and must not call back into Live.
func (l *Live) OnFresh(fn func([]domain.ErrorRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFresh = append(l.onFresh, fn)
}

func (l *Live) Start(ctx context.Context) {
	l.query.Start(ctx)
}

// Stop ends polling and closes every subscriber channel.
func (l *Live) Stop() {
	l.query.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
}

func (l *Live) merge(list *domain.ErrorList) {
	if list == nil {
		return
	}

	l.mu.Lock()
	before := l.buf.Version()
	fresh := l.buf.Merge(list.Errors)
	changed := l.buf.Version() != before
	var snap Snapshot
	if changed {
		snap = l.buf.Snapshot()
		l.broadcast(snap)
	}
	listeners := l.onFresh
	l.mu.Unlock()

	if !changed {
		return
	}
	if l.recorder != nil {
		l.recorder.ObserveMerge(len(fresh), len(snap.Items), snap.NewCount)
	}
	l.log.Debug("Merged poll result",
		zap.Int("fresh", len(fresh)),
		zap.Int("size", len(snap.Items)),
		zap.Int("new_count", snap.NewCount))
	for _, fn := range listeners {
		fn(fresh)
	}
}

// Status returns the buffer together with the poll state.
func (l *Live) Status() Status {
	state := l.query.State()

	l.mu.Lock()
	snap := l.buf.Snapshot()
	l.mu.Unlock()

	lastPoll := state.UpdatedAt
	if state.FailedAt.After(lastPoll) {
		lastPoll = state.FailedAt
	}
	return Status{
		Snapshot:   snap,
		Loading:    state.Loading,
		Err:        state.Err,
		LastPollAt: lastPoll,
	}
}

func (l *Live) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Snapshot()
}

func (l *Live) Acknowledge() { l.mutate((*Buffer).Acknowledge) }
func (l *Live) Pause()       { l.mutate((*Buffer).Pause) }
func (l *Live) Resume()      { l.mutate((*Buffer).Resume) }

// Refresh clears the buffer and requests an immediate poll.
func (l *Live) Refresh() {
	l.mutate((*Buffer).Refresh)
	l.query.Invalidate()
}

func (l *Live) mutate(op func(*Buffer)) {
	l.mu.Lock()
	before := l.buf.Version()
	op(l.buf)
	if l.buf.Version() == before {
		l.mu.Unlock()
		return
	}
	snap := l.buf.Snapshot()
	l.broadcast(snap)
	l.mu.Unlock()

	if l.recorder != nil {
		l.recorder.ObserveMerge(0, len(snap.Items), snap.NewCount)
	}
}

// Subscribe returns a channel that receives the latest snapshot after every
// change. Slow readers only see the most recent one. The returned function
// unsubscribes; the channel is closed on unsubscribe or Stop.
func (l *Live) Subscribe() (<-chan Snapshot, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if l.stopped {
		close(ch)
		return ch, func() {}
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if sub, ok := l.subs[id]; ok {
				close(sub)
				delete(l.subs, id)
			}
		})
	}
}

// broadcast must be called with l.mu held.
func (l *Live) broadcast(snap Snapshot) {
	for _, ch := range l.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
