package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cancomp/internal/fileutil"
	"cancomp/internal/rgstats"
)

// Metrics holds the collectors for one run.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	LookupsTotal    *prometheus.CounterVec
	CacheEntries    prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

// New creates the collectors and registers them on registry. A nil registry
// gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancomp_musicbrainz_requests_total",
				Help: "MusicBrainz HTTP attempts by response code",
			},
			[]string{"code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cancomp_musicbrainz_request_duration_seconds",
				Help:    "MusicBrainz HTTP attempt duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"code"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancomp_musicbrainz_retries_total",
				Help: "MusicBrainz request retries by reason",
			},
			[]string{"reason"},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancomp_release_group_lookups_total",
				Help: "Release group lookups by outcome",
			},
			[]string{"outcome"},
		),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cancomp_cache_entries",
			Help: "Release groups stored in the cache after the run",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cancomp_last_run_success",
			Help: "1 if the last run completed, 0 otherwise",
		}),
		LastRunUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cancomp_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RetriesTotal,
		m.LookupsTotal,
		m.CacheEntries,
		m.LastRunSuccess,
		m.LastRunUnixTime,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP attempt. A zero status means the request
// never produced a response.
func (m *Metrics) ObserveRequest(statusCode int, elapsed time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.RequestsTotal.WithLabelValues(code).Inc()
	m.RequestDuration.WithLabelValues(code).Observe(elapsed.Seconds())
}

// ObserveRetry records a scheduled retry.
func (m *Metrics) ObserveRetry(reason string) {
	m.RetriesTotal.WithLabelValues(reason).Inc()
}

// ObserveLookup records the outcome of one release group lookup.
func (m *Metrics) ObserveLookup(status rgstats.Status) {
	m.LookupsTotal.WithLabelValues(outcome(status)).Inc()
}

// Finish stamps the run result.
func (m *Metrics) Finish(success bool, cacheEntries int, at time.Time) {
	m.CacheEntries.Set(float64(cacheEntries))
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunUnixTime.Set(float64(at.Unix()))
}

// WriteTextfile writes all collectors in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func outcome(status rgstats.Status) string {
	switch status {
	case rgstats.StatusCached:
		return "cached"
	case rgstats.StatusFetchedForced:
		return "fetched_forced"
	case rgstats.StatusFetchedStale:
		return "fetched_stale"
	case rgstats.StatusFetchedMiss:
		return "fetched_miss"
	}
	if status.Failed() {
		return "failed"
	}
	return "unknown"
}
