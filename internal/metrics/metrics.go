package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "delivery",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	StreamsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "streams_total",
		Help:      "Total stream requests by outcome (full, partial, not_found, error).",
	}, []string{"outcome"})

	StreamedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "streamed_bytes_total",
		Help:      "Total bytes written to stream response bodies.",
	})

	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "delivery",
		Name:      "active_streams",
		Help:      "Number of stream transfers currently in flight.",
	})

	DownloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "downloads_total",
		Help:      "Total download requests by outcome (ok, not_found, error).",
	}, []string{"outcome"})

	DownloadedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "downloaded_bytes_total",
		Help:      "Total bytes written to download response bodies.",
	})

	CounterIncrementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "counter_increments_total",
		Help:      "Total successful usage counter increments by counter name.",
	}, []string{"counter"})

	CounterFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delivery",
		Name:      "counter_failures_total",
		Help:      "Total failed usage counter increments by counter name.",
	}, []string{"counter"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StreamsTotal,
		StreamedBytesTotal,
		ActiveStreams,
		DownloadsTotal,
		DownloadedBytesTotal,
		CounterIncrementsTotal,
		CounterFailuresTotal,
	)
}
