package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an indexing run.
type Metrics struct {
	SessionsRead    prometheus.Counter
	SessionsIndexed prometheus.Counter
	SessionErrors   *prometheus.CounterVec // labels: kind={validation,location,time,date,timezone,read,other}

	// Load metrics.
	DocumentsLoaded *prometheus.CounterVec   // labels: sink, index
	LoadDuration    *prometheus.HistogramVec // labels: sink
	RunDuration     prometheus.Histogram

	// Weather metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "sessions_read_total",
			Help:      "Session log files read from the input directory.",
		}),
		SessionsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "sessions_indexed_total",
			Help:      "Sessions that passed validation and were handed to the sinks.",
		}),
		SessionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "session_errors_total",
			Help:      "Session logs rejected, by error kind.",
		}, []string{"kind"}),
		DocumentsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "documents_loaded_total",
			Help:      "Documents written, by sink and index.",
		}, []string{"sink", "index"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climbr",
			Name:      "load_duration_seconds",
			Help:      "Duration of writing one document stream to a sink.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"sink"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climbr",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete read-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "weather_requests_total",
			Help:      "Weather API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climbr",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climbr",
			Name:      "weather_api_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climbr",
			Name:      "weather_enabled",
			Help:      "1 when weather enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SessionsRead,
		m.SessionsIndexed,
		m.SessionErrors,
		m.DocumentsLoaded,
		m.LoadDuration,
		m.RunDuration,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
	}
}

// WriteTextfile dumps the default registry in the text exposition format for
// the node exporter textfile collector. A batch run has no scrape endpoint.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
