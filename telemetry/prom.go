package telemetry

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics backs Metrics with Prometheus collectors, lazily registering
// one collector per metric name the first time it's observed since labels
// and cardinality aren't known up front (schedule node counts, per-resource
// gauges, per-tool-name counters, etc.).
type PromMetrics struct {
	reg *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	timers   map[string]*prometheus.HistogramVec
}

// NewPromMetrics constructs a Metrics recorder registered against reg. Pass
// prometheus.NewRegistry() or prometheus.DefaultRegisterer's registry.
func NewPromMetrics(reg *prometheus.Registry) *PromMetrics {
	return &PromMetrics{
		reg:      reg,
		counters: map[string]*prometheus.CounterVec{},
		gauges:   map[string]*prometheus.GaugeVec{},
		timers:   map[string]*prometheus.HistogramVec{},
	}
}

func labelNames(labels []string) ([]string, []string) {
	names := make([]string, 0, len(labels)/2)
	values := make([]string, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		names = append(names, sanitizeLabel(labels[i]))
		values = append(values, labels[i+1])
	}
	return names, values
}

func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

func (p *PromMetrics) IncCounter(name string, value float64, labels ...string) {
	names, values := labelNames(labels)
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, names)
		p.reg.MustRegister(vec)
		p.counters[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Add(value)
}

func (p *PromMetrics) RecordGauge(name string, value float64, labels ...string) {
	names, values := labelNames(labels)
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: name}, names)
		p.reg.MustRegister(vec)
		p.gauges[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Set(value)
}

func (p *PromMetrics) RecordTimer(name string, d time.Duration, labels ...string) {
	names, values := labelNames(labels)
	p.mu.Lock()
	vec, ok := p.timers[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: name}, names)
		p.reg.MustRegister(vec)
		p.timers[name] = vec
	}
	p.mu.Unlock()
	vec.WithLabelValues(values...).Observe(d.Seconds())
}
