package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGridRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveGridRun("odeh", 468, 2*time.Second, nil)
	collector.ObserveGridRun("odeh", 0, time.Second, errors.New("cancelled"))

	if got := testutil.ToFloat64(collector.GridRuns.WithLabelValues("odeh", "ok")); got != 1 {
		t.Fatalf("grid runs ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.GridRuns.WithLabelValues("odeh", "error")); got != 1 {
		t.Fatalf("grid runs error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.GridCells); got != 468 {
		t.Fatalf("grid cells = %v, want 468", got)
	}
}

func TestObserveConjunctionCountsFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveConjunction("geocentric", false)
	collector.ObserveConjunction("topocentric", true)
	collector.ObserveConjunction("topocentric", false)

	if got := testutil.ToFloat64(collector.ConjunctionLookups.WithLabelValues("topocentric")); got != 2 {
		t.Fatalf("topocentric lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.ConjunctionFallback); got != 1 {
		t.Fatalf("fallbacks = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesEngineCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.ObserveGridRun("yallop", 100, time.Second, nil)
	collector.ObserveTrajectory()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"crescent_grid_runs_total",
		"crescent_grid_duration_seconds",
		"crescent_grid_cells_total",
		"crescent_trajectory_runs_total",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestNewEngineCollectorIdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewEngineCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	second.ObserveTrajectory()
	if got := testutil.ToFloat64(second.TrajectoryRuns); got != 1 {
		t.Fatalf("trajectory runs = %v, want 1", got)
	}
}
