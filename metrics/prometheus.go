package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink binds Sink to a prometheus.Registry. Each metric name is
// registered lazily on first use, with its label name set fixed by the keys
// seen on that first call — callers must report a given metric name with a
// consistent label key set, mirroring how a prometheus.*Vec is declared once
// and reused across label values.
type PrometheusSink struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	buckets    []float64
}

// DefaultBuckets is a five-bucket request-duration histogram shape, in
// seconds, suitable for sub-second to multi-second latencies.
var DefaultBuckets = []float64{0.1, 0.3, 1.2, 5, 10}

// NewPrometheus creates a Sink registered against registry. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer's underlying registry to expose metrics on
// the process-wide /metrics endpoint.
func NewPrometheus(registry *prometheus.Registry) *PrometheusSink {
	return &PrometheusSink{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		buckets:    DefaultBuckets,
	}
}

func labelPairs(labels []string) (keys, values []string) {
	for i := 0; i+1 < len(labels); i += 2 {
		keys = append(keys, labels[i])
		values = append(values, labels[i+1])
	}
	if len(keys) == 0 {
		return nil, nil
	}
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	sortedKeys := make([]string, len(keys))
	sortedValues := make([]string, len(values))
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedValues[i] = values[j]
	}
	return sortedKeys, sortedValues
}

func (s *PrometheusSink) counterVec(name string, keys []string) *prometheus.CounterVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.counters[name]; ok {
		return v
	}
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, keys)
	s.registry.MustRegister(v)
	s.counters[name] = v
	return v
}

func (s *PrometheusSink) gaugeVec(name string, keys []string) *prometheus.GaugeVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.gauges[name]; ok {
		return v
	}
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, keys)
	s.registry.MustRegister(v)
	s.gauges[name] = v
	return v
}

func (s *PrometheusSink) histogramVec(name string, keys []string) *prometheus.HistogramVec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.histograms[name]; ok {
		return v
	}
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Buckets: s.buckets}, keys)
	s.registry.MustRegister(v)
	s.histograms[name] = v
	return v
}

func (s *PrometheusSink) CounterAdd(name string, delta float64, labels ...string) {
	keys, values := labelPairs(labels)
	s.counterVec(name, keys).WithLabelValues(values...).Add(delta)
}

func (s *PrometheusSink) GaugeSet(name string, value float64, labels ...string) {
	keys, values := labelPairs(labels)
	s.gaugeVec(name, keys).WithLabelValues(values...).Set(value)
}

func (s *PrometheusSink) HistogramObserve(name string, value float64, labels ...string) {
	keys, values := labelPairs(labels)
	s.histogramVec(name, keys).WithLabelValues(values...).Observe(value)
}

func (s *PrometheusSink) Timing(name string, d time.Duration, labels ...string) {
	s.HistogramObserve(name, d.Seconds(), labels...)
}
