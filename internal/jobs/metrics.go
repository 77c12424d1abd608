package jobmetrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	swept    *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asetdesk_job_runs_total",
			Help: "Jumlah eksekusi job latar per nama dan status.",
		}, []string{"job", "success"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asetdesk_job_failures_total",
			Help: "Jumlah kegagalan job latar per nama.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asetdesk_job_duration_seconds",
			Help:    "Durasi eksekusi job latar per nama.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asetdesk_job_swept_total",
			Help: "Jumlah item yang dibersihkan job sweep per nama.",
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.swept)
	return m
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// Swept records items removed by a sweep run.
func (m *Metrics) Swept(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.swept.WithLabelValues(job).Add(float64(count))
}

// Done finalises the run, recording duration and outcome.
func (t *Tracker) Done(err error) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	t.metrics.runs.WithLabelValues(t.job, strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
}
