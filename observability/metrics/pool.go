package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"veilswap/core/events"
)

type PoolMetrics struct {
	eventsEmitted *prometheus.CounterVec
	commitments   prometheus.Counter
	reveals       prometheus.Counter
	flashSwaps    prometheus.Counter
	reserve0      prometheus.Gauge
	reserve1      prometheus.Gauge
}

var (
	poolOnce     sync.Once
	poolRegistry *PoolMetrics
)

func Pool() *PoolMetrics {
	poolOnce.Do(func() {
		poolRegistry = &PoolMetrics{
			eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "pool_events_emitted_total",
				Help: "Count of pool events emitted by type.",
			}, []string{"type"}),
			commitments: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_commitments_total",
				Help: "Number of swap commitments recorded.",
			}),
			reveals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_reveals_total",
				Help: "Number of swap reveals settled.",
			}),
			flashSwaps: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "pool_flash_swaps_total",
				Help: "Number of flash swaps settled.",
			}),
			reserve0: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_reserve0",
				Help: "Current token0 reserve.",
			}),
			reserve1: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "pool_reserve1",
				Help: "Current token1 reserve.",
			}),
		}
		prometheus.MustRegister(
			poolRegistry.eventsEmitted,
			poolRegistry.commitments,
			poolRegistry.reveals,
			poolRegistry.flashSwaps,
			poolRegistry.reserve0,
			poolRegistry.reserve1,
		)
	})
	return poolRegistry
}

// ObserveEvent records an emitted pool event by type.
func (m *PoolMetrics) ObserveEvent(eventType string) {
	if m == nil || eventType == "" {
		return
	}
	m.eventsEmitted.WithLabelValues(eventType).Inc()
	switch eventType {
	case "pool.swap_committed":
		m.commitments.Inc()
	case "pool.swap_revealed":
		m.reveals.Inc()
	case "pool.flash_swap":
		m.flashSwaps.Inc()
	}
}

// SetReserves updates the reserve gauges after a state transition.
func (m *PoolMetrics) SetReserves(reserve0, reserve1 float64) {
	if m == nil {
		return
	}
	m.reserve0.Set(reserve0)
	m.reserve1.Set(reserve1)
}

// Emitter wraps an event emitter so every emission is also counted. A nil
// next emitter drops events after counting.
type Emitter struct {
	metrics *PoolMetrics
	next    events.Emitter
}

// NewEmitter builds a counting emitter in front of next.
func NewEmitter(m *PoolMetrics, next events.Emitter) *Emitter {
	return &Emitter{metrics: m, next: next}
}

// Emit implements events.Emitter.
func (e *Emitter) Emit(evt events.Event) {
	if e == nil || evt == nil {
		return
	}
	e.metrics.ObserveEvent(evt.EventType())
	if e.next != nil {
		e.next.Emit(evt)
	}
}
