package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric the annotator exposes.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Annotation pipeline
	AnnotationRequestsTotal   CounterVec
	AnnotationDuration        HistogramVec
	AnnotationMatchesByType   CounterVec
	AnnotationUnmatchedTotal  CounterVec
	AnnotationBatchSize       HistogramVec
	AnnotationInFlightBatches GaugeVec

	// Term registry providers
	ProviderRequestsTotal CounterVec
	ProviderDuration      HistogramVec

	// Entity extraction
	ExtractionRequestsTotal CounterVec
	ExtractionDuration      HistogramVec
	ExtractionEntitiesTotal CounterVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Events
	EventsPublishedTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultProviderDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultLLMDurationBuckets      = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultBatchSizeBuckets        = []float64{1, 2, 5, 10, 25, 50, 100}
)

// NewAppMetrics registers every metric against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Annotation pipeline
	m.AnnotationRequestsTotal = collector.RegisterCounter("annotation_requests_total", "Annotation requests", "operation", "domain", "status")
	m.AnnotationDuration = collector.RegisterHistogram("annotation_duration_seconds", "Annotation request duration", DefaultProviderDurationBuckets, "operation")
	m.AnnotationMatchesByType = collector.RegisterCounter("annotation_matches_total", "Matches produced, by cascade stage", "match_type")
	m.AnnotationUnmatchedTotal = collector.RegisterCounter("annotation_unmatched_total", "Terms that produced no matches", "domain")
	m.AnnotationBatchSize = collector.RegisterHistogram("annotation_batch_size", "Batch annotation input sizes", DefaultBatchSizeBuckets, "operation")
	m.AnnotationInFlightBatches = collector.RegisterGauge("annotation_in_flight_batches", "Batches currently being processed")

	// Providers
	m.ProviderRequestsTotal = collector.RegisterCounter("provider_requests_total", "Term registry requests", "provider", "stage", "status")
	m.ProviderDuration = collector.RegisterHistogram("provider_request_duration_seconds", "Term registry request duration", DefaultProviderDurationBuckets, "provider", "stage")

	// Extraction
	m.ExtractionRequestsTotal = collector.RegisterCounter("extraction_requests_total", "Entity extraction requests", "status")
	m.ExtractionDuration = collector.RegisterHistogram("extraction_duration_seconds", "Entity extraction duration", DefaultLLMDurationBuckets)
	m.ExtractionEntitiesTotal = collector.RegisterCounter("extraction_entities_total", "Entities surviving offset validation", "domain")

	// Cache
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// Events
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Annotation events published", "status")

	// Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordAnnotation(metrics *AppMetrics, operation, domain string, matchTypes []string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	if domain == "" {
		domain = "none"
	}
	metrics.AnnotationRequestsTotal.WithLabelValues(operation, domain, status).Inc()
	metrics.AnnotationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		return
	}
	if len(matchTypes) == 0 {
		metrics.AnnotationUnmatchedTotal.WithLabelValues(domain).Inc()
		return
	}
	for _, mt := range matchTypes {
		metrics.AnnotationMatchesByType.WithLabelValues(mt).Inc()
	}
}

func RecordProviderCall(metrics *AppMetrics, provider, stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(provider, stage, status).Inc()
	metrics.ProviderDuration.WithLabelValues(provider, stage).Observe(duration.Seconds())
}

func RecordExtraction(metrics *AppMetrics, entityDomains []string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ExtractionRequestsTotal.WithLabelValues(status).Inc()
	metrics.ExtractionDuration.WithLabelValues().Observe(duration.Seconds())
	for _, d := range entityDomains {
		metrics.ExtractionEntitiesTotal.WithLabelValues(d).Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorCode string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorCode).Inc()
}
