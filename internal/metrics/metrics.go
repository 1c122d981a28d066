package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Generation
	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecanvas_generations_total",
			Help: "Website generations by result",
		},
		[]string{"result"}, // result: success|config_error|invalid_response|provider_error
	)
	GenerationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codecanvas_generation_duration_seconds",
			Help:    "Duration of provider generation calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9), // 0.5s..128s
		},
	)
	GeneratingActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codecanvas_generating",
			Help: "1 while a generation is in flight",
		},
	)
	GeneratedFiles = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codecanvas_generated_files",
			Help:    "Number of files returned per successful generation",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
	)

	// Formatting
	FormatRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecanvas_format_runs_total",
			Help: "Formatter invocations by style and result",
		},
		[]string{"style", "result"}, // result: changed|unchanged|skipped|unavailable|error|stale
	)

	// Files
	FileOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecanvas_file_ops_total",
			Help: "File store operations performed",
		},
		[]string{"op"}, // op: replace|select|edit|create|create_rejected
	)

	// Export
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecanvas_exports_total",
			Help: "Project exports by result",
		},
		[]string{"result"},
	)

	// HTTP
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codecanvas_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	HTTPDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codecanvas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Websockets
	EventClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "codecanvas_event_clients",
			Help: "Current number of open event websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		Generations,
		GenerationDurationSeconds,
		GeneratingActive,
		GeneratedFiles,
		FormatRuns,
		FileOps,
		Exports,
		HTTPRequests,
		HTTPDurationSeconds,
		EventClients,
	)
}
