package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registers isolates the exposition registry behind an interface so the
// scheduler never depends on a concrete Prometheus registry. Collectors are
// attached through Register exactly once per service; the underlying registry
// rejects re-registering the same collector instance.
type Registers interface {
	prometheus.Registerer
	prometheus.Gatherer
	Register(collector prometheus.Collector) error
}

// promRegistry wraps the official *prometheus.Registry.
type promRegistry struct {
	registry *prometheus.Registry
}

// NewPromRegistry creates a Registers backed by the given Prometheus registry.
func NewPromRegistry(registry *prometheus.Registry) Registers {
	return &promRegistry{registry: registry}
}

// MustRegister implements prometheus.Registerer.
func (p *promRegistry) MustRegister(collectors ...prometheus.Collector) {
	for _, c := range collectors {
		if err := p.registry.Register(c); err != nil {
			panic(err)
		}
	}
}

// Unregister implements prometheus.Registerer.
func (p *promRegistry) Unregister(collector prometheus.Collector) bool {
	return p.registry.Unregister(collector)
}

// Register implements the extended Registers interface.
func (p *promRegistry) Register(collector prometheus.Collector) error {
	return p.registry.Register(collector)
}

// Gather implements prometheus.Gatherer.
func (p *promRegistry) Gather() ([]*dto.MetricFamily, error) {
	return p.registry.Gather()
}
