// Package metrics exports pool occupancy and spawn outcomes as Prometheus
// metrics.
//
// # Overview
//
// A Collector subscribes to the acquire and release events of registry pools
// and keeps per-pool gauges and counters current. It also implements
// spawn.Recorder, so a Coordinator can report every spawn attempt to it.
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector("respawn", reg)
//	if err := collector.WatchAll(pools); err != nil {
//		logger.Warn("some pools are not instrumented", zap.Error(err))
//	}
//	coord := spawn.NewCoordinator(pools, sel, ref, spawn.WithRecorder(collector))
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Metric Types
//
// Gauge: acquired entries and capacity per pool
// Counter: acquires, releases and spawn attempts by outcome
// Histogram: wave durations reported by the simulation
package metrics

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/pool"
)

// DefaultNamespace prefixes every metric name when none is configured.
const DefaultNamespace = "respawn"

// Collector owns the respawn metrics registered on one Prometheus registerer.
// Like the registry it watches, it is driven from the simulation loop.
type Collector struct {
	acquired     *prometheus.GaugeVec   // Entries currently handed out
	capacity     *prometheus.GaugeVec   // Fixed pool sizes
	acquires     *prometheus.CounterVec // Lifetime acquires
	releases     *prometheus.CounterVec // Lifetime releases
	spawns       *prometheus.CounterVec // Spawn attempts by outcome
	waveDuration prometheus.Histogram   // Simulated wave wall time
	watches      []watch
	startTime    time.Time
}

type watch struct {
	poolID string
	event  pool.EventType
	sub    pool.Subscription
}

// NewCollector registers the respawn metrics on reg. A nil reg creates the
// metrics without registering them.
//
// Example:
//
//	collector := metrics.NewCollector("respawn", prometheus.DefaultRegisterer)
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Collector{
		acquired: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_acquired",
				Help:      "Number of pool entries currently acquired",
			},
			[]string{"pool"},
		),
		capacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_capacity",
				Help:      "Fixed number of entries in the pool",
			},
			[]string{"pool"},
		),
		acquires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_acquires_total",
				Help:      "Total number of entries handed out",
			},
			[]string{"pool"},
		),
		releases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_releases_total",
				Help:      "Total number of entries returned to their pool",
			},
			[]string{"pool"},
		),
		spawns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spawns_total",
				Help:      "Total number of spawn attempts by outcome",
			},
			[]string{"pool", "policy", "status"},
		),
		waveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wave_duration_seconds",
				Help:      "Wall time spent simulating one wave",
				Buckets: []float64{
					1e-6, // 1μs
					1e-5, // 10μs
					1e-4, // 100μs
					1e-3, // 1ms
					1e-2, // 10ms
					1e-1, // 100ms
				},
			},
		),
		startTime: time.Now(),
	}
}

// Watch subscribes to the events of pool id and seeds its gauges.
func (c *Collector) Watch(r *pool.Registry, id string) error {
	if !r.HasPool(id) {
		return errors.Wrap(errors.ErrUnknownPool, errors.ErrorTypeNotFound, "cannot watch pool").
			WithDetail("pool", id)
	}

	c.capacity.WithLabelValues(id).Set(float64(r.Capacity(id)))
	c.acquired.WithLabelValues(id).Set(float64(r.TotalAcquired(id)))

	onAcquire := func(ev pool.Event) {
		c.acquires.WithLabelValues(ev.PoolID).Inc()
		c.acquired.WithLabelValues(ev.PoolID).Set(float64(ev.Acquired))
	}
	onRelease := func(ev pool.Event) {
		c.releases.WithLabelValues(ev.PoolID).Inc()
		c.acquired.WithLabelValues(ev.PoolID).Set(float64(ev.Acquired))
	}

	listeners := []struct {
		event pool.EventType
		fn    pool.Listener
	}{
		{pool.EventAcquire, onAcquire},
		{pool.EventRelease, onRelease},
	}
	for _, l := range listeners {
		sub, ok := r.AddListener(id, l.event, l.fn)
		if !ok {
			return errors.New(errors.ErrorTypeInternal, "listener rejected").WithDetail("pool", id)
		}
		c.watches = append(c.watches, watch{poolID: id, event: l.event, sub: sub})
	}
	return nil
}

// WatchAll watches every pool in r. Failures are joined; the remaining pools
// are still watched.
func (c *Collector) WatchAll(r *pool.Registry) error {
	var errs []error
	for _, id := range r.IDs() {
		if err := c.Watch(r, id); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Unwatch removes every subscription made by Watch.
func (c *Collector) Unwatch(r *pool.Registry) {
	for _, w := range c.watches {
		r.RemoveListener(w.poolID, w.event, w.sub)
	}
	c.watches = nil
}

// ObserveSpawn counts one spawn attempt.
func (c *Collector) ObserveSpawn(poolID, policy, status string) {
	c.spawns.WithLabelValues(poolID, policy, status).Inc()
}

// ObserveWave records how long a wave took.
func (c *Collector) ObserveWave(d time.Duration) {
	c.waveDuration.Observe(d.Seconds())
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
