package prometheus

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsCollector is a struct for collecting Prometheus metrics.
type MetricsCollector struct {
	registry             *prometheus.Registry
	requestCount         *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	responseSize         *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	modulesRunning       *prometheus.GaugeVec
	stationsConnected    prometheus.Gauge
	callbacks            *prometheus.CounterVec
	serviceName          string
	customMetrics        map[string]prometheus.Collector
	processCollectors    bool
}

// NewMetricsCollector creates a new Prometheus metrics collector with options.
// Every metric lives on the collector's own registry.
func NewMetricsCollector(options ...MetricsCollectorOptions) *MetricsCollector {
	collector := &MetricsCollector{
		registry:      prometheus.NewRegistry(),
		serviceName:   "chargehub",
		customMetrics: make(map[string]prometheus.Collector),
	}

	for _, option := range options {
		option(collector)
	}

	collector.registerDefaultMetrics()
	return collector
}

func (mc *MetricsCollector) metricName(name string) string {
	return strings.ReplaceAll(mc.serviceName, "-", "_") + "_" + name
}

func (mc *MetricsCollector) registerDefaultMetrics() {
	labels := []string{"method", "path", "status_code"}

	mc.requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: mc.metricName("http_requests_total"),
			Help: "Total number of HTTP requests",
		},
		labels,
	)

	mc.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    mc.metricName("http_request_duration_seconds"),
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		labels,
	)

	mc.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    mc.metricName("http_response_size_bytes"),
			Help:    "Size of HTTP responses",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		labels,
	)

	mc.httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: mc.metricName("http_requests_in_flight"),
			Help: "Current number of HTTP requests in flight",
		},
	)

	mc.modulesRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: mc.metricName("modules_running"),
			Help: "Business modules running in this process, by event group",
		},
		[]string{"group"},
	)

	mc.stationsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: mc.metricName("stations_connected"),
			Help: "Charging stations with an open websocket",
		},
	)

	mc.callbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: mc.metricName("callbacks_total"),
			Help: "Callback deliveries by outcome",
		},
		[]string{"outcome"},
	)

	mc.registry.MustRegister(
		mc.requestCount,
		mc.requestDuration,
		mc.responseSize,
		mc.httpRequestsInFlight,
		mc.modulesRunning,
		mc.stationsConnected,
		mc.callbacks,
	)

	if mc.processCollectors {
		mc.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	for _, metric := range mc.customMetrics {
		mc.registry.MustRegister(metric)
	}
}

// AddCustomMetric adds a custom metric to the collector
func (mc *MetricsCollector) AddCustomMetric(name string, metric prometheus.Collector) {
	mc.customMetrics[name] = metric
	mc.registry.MustRegister(metric)
}

// GetCounter creates a new counter metric
func (mc *MetricsCollector) GetCounter(name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: mc.metricName(name),
			Help: help,
		},
	)
	mc.AddCustomMetric(name, counter)
	return counter
}

// SetModuleRunning marks the module of group as running or stopped.
func (mc *MetricsCollector) SetModuleRunning(group string, running bool) {
	value := 0.0
	if running {
		value = 1
	}
	mc.modulesRunning.WithLabelValues(group).Set(value)
}

// StationConnected adjusts the connected station gauge by delta.
func (mc *MetricsCollector) StationConnected(delta int) {
	mc.stationsConnected.Add(float64(delta))
}

// CallbackDelivered counts a callback delivery outcome.
func (mc *MetricsCollector) CallbackDelivered(ok bool) {
	outcome := "delivered"
	if !ok {
		outcome = "failed"
	}
	mc.callbacks.WithLabelValues(outcome).Inc()
}
