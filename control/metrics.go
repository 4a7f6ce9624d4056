// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring. Exposes both
// pushed counters (Set) and pulled samplers (RegisterSampler) — the
// latter lets a tcp/uds/ssl/udp Server or httpx.Cache expose its live
// BytesSent/BytesReceived/Sessions counters without a background
// collection goroutine: the sampler runs at GetSnapshot time.

package control

import (
	"sync"
	"time"
)

// MetricsRegistry holds mutable metrics plus pull-based samplers.
type MetricsRegistry struct {
	mu       sync.RWMutex
	metrics  map[string]any
	samplers map[string]func() any
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics:  make(map[string]any),
		samplers: make(map[string]func() any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// RegisterSampler registers a pull-based metric, evaluated fresh on every
// GetSnapshot call (e.g. a Server's live Sessions()/BytesSent() counters).
func (mr *MetricsRegistry) RegisterSampler(key string, fn func() any) {
	mr.mu.Lock()
	mr.samplers[key] = fn
	mr.mu.Unlock()
}

// GetSnapshot returns the latest pushed metrics plus a fresh read of every
// registered sampler.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	out := make(map[string]any, len(mr.metrics)+len(mr.samplers))
	for k, v := range mr.metrics {
		out[k] = v
	}
	samplers := make(map[string]func() any, len(mr.samplers))
	for k, fn := range mr.samplers {
		samplers[k] = fn
	}
	mr.mu.RUnlock()

	for k, fn := range samplers {
		out[k] = fn()
	}
	mr.mu.Lock()
	mr.updated = time.Now()
	mr.mu.Unlock()
	return out
}
