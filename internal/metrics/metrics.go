// Package metrics provides Prometheus metrics for explain runs and watch mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "explainer"
)

// Registry holds every explainer metric plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// File metrics track whole-file pipeline runs.
var (
	// FilesTotal is the number of files explained by language and result.
	FilesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_total",
		Help:      "Total number of source files explained",
	}, []string{"language", "result"})

	// FileDuration is a histogram of per-file pipeline duration in seconds.
	FileDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "file_duration_seconds",
		Help:      "Duration of a pipeline run over one file in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
	}, []string{"language"})
)

// Pipeline metrics count what the stages produced.
var (
	// UnitsTotal is the number of units extracted.
	UnitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_total",
		Help:      "Total number of units extracted",
	}, []string{"language"})

	// PiecesTotal is the number of pieces produced by the splitter.
	PiecesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pieces_total",
		Help:      "Total number of pieces produced",
	}, []string{"language"})

	// ProvenanceMissesTotal is the number of pieces given a fallback span.
	ProvenanceMissesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provenance_misses_total",
		Help:      "Total number of pieces whose text was not found in their unit",
	}, []string{"language"})

	// AnnotationFailuresTotal is the number of pieces whose explanation failed.
	AnnotationFailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "annotation_failures_total",
		Help:      "Total number of failed piece explanations",
	}, []string{"language"})
)

// Provider metrics track explanation requests.
var (
	// ProviderRequestsTotal is the number of provider requests.
	ProviderRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of provider requests",
	}, []string{"provider"})

	// ProviderErrorsTotal is the number of failed provider requests.
	ProviderErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of failed provider requests",
	}, []string{"provider"})

	// ProviderDuration is a histogram of provider request duration in seconds.
	ProviderDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_duration_seconds",
		Help:      "Duration of provider requests in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
	}, []string{"provider"})
)

// Cache metrics track explanation cache lookups.
var (
	CacheHitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of explanation cache hits",
	})

	CacheMissesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of explanation cache misses",
	})
)

// Watcher metrics track filesystem changes seen by watch mode.
var (
	// WatcherChangesTotal is the number of coalesced changes by type.
	WatcherChangesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watcher_changes_total",
		Help:      "Total number of coalesced filesystem changes",
	}, []string{"type"})
)

// BuildInfo reports the running version.
var BuildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "build_info",
	Help:      "Build information",
}, []string{"version", "go_version"})
