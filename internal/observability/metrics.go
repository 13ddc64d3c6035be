// Package observability bundles the Prometheus metrics for the visibility
// engine and its controllers.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for grid, trajectory, and
// conjunction work and provides a ready-to-mount /metrics handler.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	GridRuns     *prometheus.CounterVec
	GridDuration *prometheus.HistogramVec
	GridCells    prometheus.Counter

	TrajectoryRuns      prometheus.Counter
	ConjunctionLookups  *prometheus.CounterVec
	ConjunctionFallback prometheus.Counter
}

// NewEngineCollector registers the engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	gridRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crescent_grid_runs_total",
		Help: "Total number of visibility grid computations, labeled by criterion and outcome.",
	}, []string{"criterion", "outcome"})
	gridRuns, err := registerCounterVec(reg, gridRuns, "crescent_grid_runs_total")
	if err != nil {
		return nil, err
	}

	gridDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crescent_grid_duration_seconds",
		Help:    "Wall-clock duration of visibility grid computations in seconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"criterion"})
	gridDuration, err = registerHistogramVec(reg, gridDuration, "crescent_grid_duration_seconds")
	if err != nil {
		return nil, err
	}

	gridCells, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crescent_grid_cells_total",
		Help: "Total number of grid cells evaluated across all runs.",
	}), "crescent_grid_cells_total")
	if err != nil {
		return nil, err
	}

	trajectoryRuns, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crescent_trajectory_runs_total",
		Help: "Total number of sunset trajectory computations.",
	}), "crescent_trajectory_runs_total")
	if err != nil {
		return nil, err
	}

	conjunctionLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crescent_conjunction_lookups_total",
		Help: "Total number of conjunction resolutions, labeled by reference frame.",
	}, []string{"frame"})
	conjunctionLookups, err = registerCounterVec(reg, conjunctionLookups, "crescent_conjunction_lookups_total")
	if err != nil {
		return nil, err
	}

	conjunctionFallback, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crescent_conjunction_fallbacks_total",
		Help: "Topocentric conjunction requests that fell back to the geocentric time.",
	}), "crescent_conjunction_fallbacks_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:            gatherer,
		GridRuns:            gridRuns,
		GridDuration:        gridDuration,
		GridCells:           gridCells,
		TrajectoryRuns:      trajectoryRuns,
		ConjunctionLookups:  conjunctionLookups,
		ConjunctionFallback: conjunctionFallback,
	}, nil
}

// ObserveGridRun records one completed (or failed) grid computation.
func (c *EngineCollector) ObserveGridRun(criterion string, cells int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.GridRuns != nil {
		c.GridRuns.WithLabelValues(criterion, outcome).Inc()
	}
	if err == nil && c.GridDuration != nil {
		c.GridDuration.WithLabelValues(criterion).Observe(elapsed.Seconds())
	}
	if c.GridCells != nil && cells > 0 {
		c.GridCells.Add(float64(cells))
	}
}

// ObserveConjunction records one conjunction resolution.
func (c *EngineCollector) ObserveConjunction(frame string, fallback bool) {
	if c == nil {
		return
	}
	if c.ConjunctionLookups != nil {
		c.ConjunctionLookups.WithLabelValues(frame).Inc()
	}
	if fallback && c.ConjunctionFallback != nil {
		c.ConjunctionFallback.Inc()
	}
}

// ObserveTrajectory records one trajectory computation.
func (c *EngineCollector) ObserveTrajectory() {
	if c == nil || c.TrajectoryRuns == nil {
		return
	}
	c.TrajectoryRuns.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, ctr prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(ctr); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return ctr, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
