// Package promadapter implements the lending MetricsCollector on top of Prometheus.
package promadapter

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector implements shell.MetricsCollector and eventlog.MetricsCollector with Prometheus:
//   - RecordDuration -> HistogramVec, observed in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// Collectors are created and registered on first use per metric name and label key set.
// A metric name that is reused with another label key set is dropped, Prometheus rejects it.
type MetricsCollector struct {
	registerer prometheus.Registerer
	namespace  string

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	rejected   map[string]struct{}
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes every metric name with namespace and an underscore.
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) {
		m.namespace = namespace
	}
}

// NewMetricsCollector creates a collector that registers its collectors with registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func NewMetricsCollector(registerer prometheus.Registerer, opts ...Option) *MetricsCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		rejected:   make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RecordDuration observes duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	histogram := m.histogramFor(metric, labelKeys(labels))
	if histogram == nil {
		return
	}

	histogram.With(labels).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	counter := m.counterFor(metric, labelKeys(labels))
	if counter == nil {
		return
	}

	counter.With(labels).Inc()
}

// RecordValue sets the gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	gauge := m.gaugeFor(metric, labelKeys(labels))
	if gauge == nil {
		return
	}

	gauge.With(labels).Set(value)
}

func (m *MetricsCollector) histogramFor(metric string, keys []string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := collectorID(metric, keys)
	if histogram, exists := m.histograms[id]; exists {
		return histogram
	}

	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Duration of " + humanize(metric) + " in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, keys)

	registered, ok := m.register(id, histogram)
	if !ok {
		return nil
	}

	m.histograms[id], _ = registered.(*prometheus.HistogramVec)

	return m.histograms[id]
}

func (m *MetricsCollector) counterFor(metric string, keys []string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := collectorID(metric, keys)
	if counter, exists := m.counters[id]; exists {
		return counter
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Total count of " + humanize(metric) + ".",
	}, keys)

	registered, ok := m.register(id, counter)
	if !ok {
		return nil
	}

	m.counters[id], _ = registered.(*prometheus.CounterVec)

	return m.counters[id]
}

func (m *MetricsCollector) gaugeFor(metric string, keys []string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := collectorID(metric, keys)
	if gauge, exists := m.gauges[id]; exists {
		return gauge
	}

	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Current value of " + humanize(metric) + ".",
	}, keys)

	registered, ok := m.register(id, gauge)
	if !ok {
		return nil
	}

	m.gauges[id], _ = registered.(*prometheus.GaugeVec)

	return m.gauges[id]
}

// register returns the collector to use, which is the existing one if an equal collector was
// registered before, e.g. by a second MetricsCollector on the same registry.
func (m *MetricsCollector) register(id string, collector prometheus.Collector) (prometheus.Collector, bool) {
	if _, rejected := m.rejected[id]; rejected {
		return nil, false
	}

	err := m.registerer.Register(collector)
	if err == nil {
		return collector, true
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector, true
	}

	m.rejected[id] = struct{}{}

	return nil, false
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

func collectorID(metric string, keys []string) string {
	return metric + "{" + strings.Join(keys, ",") + "}"
}

// humanize turns "eventlog_query_duration_seconds" into "eventlog query duration seconds".
func humanize(metric string) string {
	return strings.ReplaceAll(metric, "_", " ")
}
