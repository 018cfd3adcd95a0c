package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "error_dashboard"

// Metrics holds every collector exported by the dashboard processes.
type Metrics struct {
	registry *prometheus.Registry

	PollsTotal       *prometheus.CounterVec
	PollDuration     *prometheus.HistogramVec
	StreamFreshTotal prometheus.Counter
	StreamBufferSize prometheus.Gauge
	StreamNewCount   prometheus.Gauge
	MutationsTotal   *prometheus.CounterVec
	PublishedTotal   *prometheus.CounterVec
	ArchivedTotal    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Polls of the error-tracking service by query key and outcome",
		}, []string{"key", "outcome"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Poll latency by query key",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"key"}),
		StreamFreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_fresh_records_total",
			Help:      "Records merged into the live stream",
		}),
		StreamBufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_buffer_size",
			Help:      "Records currently held by the live stream",
		}),
		StreamNewCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_new_count",
			Help:      "Unacknowledged records in the live stream",
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Resolve and delete requests by outcome",
		}, []string{"op", "outcome"}),
		PublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations sent to the archive queue by outcome",
		}, []string{"outcome"}),
		ArchivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_archived_total",
			Help:      "Observations handled by the archive consumer by outcome",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
	}
	r.MustRegister(
		m.PollsTotal, m.PollDuration,
		m.StreamFreshTotal, m.StreamBufferSize, m.StreamNewCount,
		m.MutationsTotal, m.PublishedTotal, m.ArchivedTotal,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObservePoll implements poller.Recorder.
func (m *Metrics) ObservePoll(key, outcome string, elapsed time.Duration) {
	m.PollsTotal.WithLabelValues(key, outcome).Inc()
	m.PollDuration.WithLabelValues(key).Observe(elapsed.Seconds())
}

// ObserveMerge implements stream.Recorder.
func (m *Metrics) ObserveMerge(fresh, size, newCount int) {
	m.StreamFreshTotal.Add(float64(fresh))
	m.StreamBufferSize.Set(float64(size))
	m.StreamNewCount.Set(float64(newCount))
}

func (m *Metrics) ObserveMutation(op string, err error) {
	m.MutationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ObservePublish(n int, err error) {
	m.PublishedTotal.WithLabelValues(outcome(err)).Add(float64(n))
}

// ObserveArchive counts observations by consumer outcome: inserted,
// duplicate, malformed or failed.
func (m *Metrics) ObserveArchive(outcome string, n int) {
	m.ArchivedTotal.WithLabelValues(outcome).Add(float64(n))
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
