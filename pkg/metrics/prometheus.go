package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the CineMind service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Session lifecycle
	sessionsCreated prometheus.Counter
	sessionsActive  prometheus.Gauge
	sessionsEvicted *prometheus.CounterVec

	// User flow
	pageVisits          *prometheus.CounterVec
	staleVisits         *prometheus.CounterVec
	selectionChanges    *prometheus.CounterVec
	watchedToggles      *prometheus.CounterVec
	onboardingCompleted prometheus.Counter
	recommendationSize  prometheus.Histogram

	// Recommendation service
	remoteFetches      *prometheus.CounterVec
	remoteFetchLatency *prometheus.HistogramVec
	fallbacks          *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// DefaultLatencyBuckets covers 1ms to about 8s. Latency histograms observe
// milliseconds.
var DefaultLatencyBuckets = prometheus.ExponentialBuckets(1, 2, 14) //nolint:gochecknoglobals // shared bucket layout

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cinemind",
		subsystem:        "service",
		histogramBuckets: DefaultLatencyBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.sessionsCreated = auto.NewCounter(m.counterOpts("sessions_created_total", "Total number of sessions created"))
	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active", "Current number of live sessions"))
	m.sessionsEvicted = auto.NewCounterVec(
		m.counterOpts("sessions_evicted_total", "Sessions removed from the store by reason"),
		[]string{"reason"},
	)

	m.pageVisits = auto.NewCounterVec(
		m.counterOpts("page_visits_total", "Page entries by page"),
		[]string{"page"},
	)
	m.staleVisits = auto.NewCounterVec(
		m.counterOpts("stale_visits_total", "Fetch results discarded because the user navigated away"),
		[]string{"page"},
	)
	m.selectionChanges = auto.NewCounterVec(
		m.counterOpts("selection_changes_total", "Favorite selection toggles by outcome"),
		[]string{"kind"},
	)
	m.watchedToggles = auto.NewCounterVec(
		m.counterOpts("watched_toggles_total", "Watched flag toggles by resulting state"),
		[]string{"state"},
	)
	m.onboardingCompleted = auto.NewCounter(m.counterOpts("onboarding_completed_total", "Sessions that confirmed five favorites"))
	m.recommendationSize = auto.NewHistogram(m.histogramOpts(
		"recommendation_list_size",
		"Number of aggregated recommendations produced per home visit",
		[]float64{0, 1, 5, 10, 20, 30, 40, 50},
	))

	m.remoteFetches = auto.NewCounterVec(
		m.counterOpts("remote_fetches_total", "Calls to the recommendation service by endpoint and outcome"),
		[]string{"endpoint", "outcome"},
	)
	m.remoteFetchLatency = auto.NewHistogramVec(
		m.histogramOpts("remote_fetch_latency_milliseconds", "Recommendation service call latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)
	m.fallbacks = auto.NewCounterVec(
		m.counterOpts("fallbacks_total", "Remote failures absorbed by returning an empty list"),
		[]string{"component"},
	)
	m.breakerState = auto.NewGaugeVec(
		m.gaugeOpts("circuit_breaker_state", "Circuit breaker state (0=closed, 1=half-open, 2=open)"),
		[]string{"name"},
	)
	m.breakerTransitions = auto.NewCounterVec(
		m.counterOpts("circuit_breaker_transitions_total", "Circuit breaker state transitions"),
		[]string{"name", "from", "to"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// Session Metrics Functions.

// RecordSessionCreated increments the created sessions counter.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionEvicted counts a session removed for reason ("idle", "capacity", "ended").
func RecordSessionEvicted(reason string) {
	globalManager.sessionsEvicted.WithLabelValues(reason).Inc()
}

// Flow Metrics Functions.

// RecordPageVisit counts an entry into page.
func RecordPageVisit(page string) {
	globalManager.pageVisits.WithLabelValues(page).Inc()
}

// RecordStaleVisit counts a fetch result dropped because the visit was superseded.
func RecordStaleVisit(page string) {
	globalManager.staleVisits.WithLabelValues(page).Inc()
}

// RecordSelectionChange counts a selection toggle outcome.
func RecordSelectionChange(kind string) {
	globalManager.selectionChanges.WithLabelValues(kind).Inc()
}

// RecordWatchedToggle counts a watched toggle by resulting state.
func RecordWatchedToggle(watched bool) {
	state := "unwatched"
	if watched {
		state = "watched"
	}
	globalManager.watchedToggles.WithLabelValues(state).Inc()
}

// RecordOnboardingCompleted increments the completed onboarding counter.
func RecordOnboardingCompleted() {
	globalManager.onboardingCompleted.Inc()
}

// RecordRecommendationSize observes the length of an aggregated list.
func RecordRecommendationSize(n int) {
	globalManager.recommendationSize.Observe(float64(n))
}

// Remote Service Metrics Functions.

// RecordRemoteFetch counts a remote call by endpoint and outcome.
func RecordRemoteFetch(endpoint, outcome string) {
	globalManager.remoteFetches.WithLabelValues(endpoint, outcome).Inc()
}

// RecordRemoteFetchLatency records remote call latency in milliseconds.
func RecordRemoteFetchLatency(endpoint string, latencyMs float64) {
	globalManager.remoteFetchLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordFallback counts a remote failure that was replaced by an empty list.
func RecordFallback(component string) {
	globalManager.fallbacks.WithLabelValues(component).Inc()
}

// UpdateBreakerState sets the gauge for the named breaker.
func UpdateBreakerState(name string, state float64) {
	globalManager.breakerState.WithLabelValues(name).Set(state)
}

// RecordBreakerTransition counts a breaker state change.
func RecordBreakerTransition(name, from, to string) {
	globalManager.breakerTransitions.WithLabelValues(name, from, to).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
