package monitor

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const keyPrefix = "easybatch:type=JobMonitor,name="

// Key returns the well-known registry key for a job's Monitor.
func Key(jobName string) string { return keyPrefix + jobName }

// Registry holds one Monitor per running or recently-finished job, keyed by
// Key(jobName). Registering with jmxEnabled also exposes the Monitor as a
// Prometheus collector on the registry's own gatherer.
type Registry struct {
	mu       sync.RWMutex
	monitors map[string]*Monitor
	prom     *prometheus.Registry
}

// NewRegistry returns an empty Registry with its own Prometheus registry.
func NewRegistry() *Registry {
	return &Registry{
		monitors: make(map[string]*Monitor),
		prom:     prometheus.NewRegistry(),
	}
}

var globalRegistry = NewRegistry()

// GlobalRegistry returns the process-wide Registry used by the convenience
// functions below.
func GlobalRegistry() *Registry { return globalRegistry }

// Register adds m under Key(m.Name()). It is an error to register the same
// job name twice without an intervening Unregister. When jmxEnabled is
// true, m is additionally registered as a Prometheus collector.
func (r *Registry) Register(m *Monitor, jmxEnabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(m.Name())
	if _, exists := r.monitors[key]; exists {
		return fmt.Errorf("monitor: already registered: %s", key)
	}
	if jmxEnabled {
		if err := r.prom.Register(m); err != nil {
			return fmt.Errorf("monitor: register prometheus collector for %s: %w", key, err)
		}
	}
	r.monitors[key] = m
	return nil
}

// Unregister removes jobName's Monitor, if present, from both the registry
// and the Prometheus collector set.
func (r *Registry) Unregister(jobName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(jobName)
	if m, ok := r.monitors[key]; ok {
		r.prom.Unregister(m)
		delete(r.monitors, key)
	}
}

// Get retrieves jobName's Monitor.
func (r *Registry) Get(jobName string) (*Monitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.monitors[Key(jobName)]
	if !ok {
		return nil, fmt.Errorf("monitor: not found: %s", jobName)
	}
	return m, nil
}

// List returns the registry keys of every currently registered Monitor.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.monitors))
	for k := range r.monitors {
		keys = append(keys, k)
	}
	return keys
}

// Gatherer exposes the registry's Prometheus collectors for an HTTP
// /metrics handler or an in-process scrape.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.prom }

// Convenience functions delegating to the global registry.

func Register(m *Monitor, jmxEnabled bool) error { return globalRegistry.Register(m, jmxEnabled) }
func Unregister(jobName string)                  { globalRegistry.Unregister(jobName) }
func Get(jobName string) (*Monitor, error)        { return globalRegistry.Get(jobName) }
func List() []string                              { return globalRegistry.List() }
func Gatherer() prometheus.Gatherer               { return globalRegistry.Gatherer() }
