// Package health provides a registry of named subsystem probes used by
// the health endpoints.
package health

import (
	"context"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds a single probe. A hung dependency must not
// stall the whole health report.
const DefaultProbeTimeout = 5 * time.Second

// Status is the result of probing one subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Checker probes a single subsystem.
type Checker func(ctx context.Context) Status

// Registry holds named probes and runs them on demand.
type Registry struct {
	mu       sync.RWMutex
	timeout  time.Duration
	checkers []namedChecker
}

type namedChecker struct {
	name  string
	check Checker
}

// NewRegistry creates a probe registry with the default per-probe timeout.
func NewRegistry() *Registry {
	return &Registry{timeout: DefaultProbeTimeout}
}

// Register adds a named probe.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, namedChecker{name: name, check: check})
	r.mu.Unlock()
}

// CheckAll runs every registered probe, each under its own timeout, and
// returns the aggregate health plus per-subsystem results in registration
// order.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	checkers := make([]namedChecker, len(r.checkers))
	copy(checkers, r.checkers)
	timeout := r.timeout
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(checkers))

	for i, nc := range checkers {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		statuses[i] = nc.check(probeCtx)
		cancel()

		statuses[i].Latency = time.Since(start).Round(time.Millisecond).String()
		if !statuses[i].Healthy {
			healthy = false
		}
	}

	return healthy, statuses
}
