package crescent

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 100

// GridOptions configures a visibility grid run. Zero values select the
// defaults noted on each field.
type GridOptions struct {
	StepDeg   float64   // lattice spacing in degrees; default 2
	MaxLat    float64   // latitude extent; default 60, 85 with IncludePolar
	Criterion Criterion // criterion to classify with; default Yallop

	// IncludePolar extends the lattice to ±85° when MaxLat is unset.
	IncludePolar bool

	// BestTime evaluates the geometry at the Yallop best time,
	// sunset + 4/9 of the moonset lag, instead of at sunset.
	BestTime bool

	// Workers caps the number of concurrent cell computations;
	// default runtime.GOMAXPROCS(0).
	Workers int

	// OnProgress, when non-nil, receives (done, total) every 100
	// completed cells and once at completion. It may be invoked from
	// worker goroutines and must be safe for concurrent use.
	OnProgress func(done, total int)
}

func (o *GridOptions) setDefaults() {
	if o.StepDeg <= 0 {
		o.StepDeg = 2
	}
	if o.MaxLat <= 0 {
		if o.IncludePolar {
			o.MaxLat = 85
		} else {
			o.MaxLat = 60
		}
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
}

// gridLattice returns the latitude and longitude sample values: latitudes
// from -maxLat to +maxLat inclusive, longitudes from -180 up to but not
// including +180.
func gridLattice(stepDeg, maxLat float64) (lats, lons []float64) {
	nLat := int(math.Floor(2*maxLat/stepDeg+1e-9)) + 1
	nLon := int(math.Ceil(360/stepDeg - 1e-9))
	lats = make([]float64, nLat)
	for i := range lats {
		lats[i] = -maxLat + float64(i)*stepDeg
	}
	lons = make([]float64, nLon)
	for j := range lons {
		lons[j] = -180 + float64(j)*stepDeg
	}
	return lats, lons
}

// GenerateVisibilityGrid evaluates crescent visibility for one calendar
// date over a world-spanning lattice and returns the points in
// deterministic lat-major order.
//
// Cells are independent, so rows are fanned out over a bounded worker pool
// and written into a pre-sized slice with no shared mutable state.
// Cancellation is cooperative and checked between cells; a cancelled run
// returns (nil, ctx.Err()) and never a partial grid. A fault inside a
// single cell is recovered and mapped to that criterion's worst zone.
func (e *Engine) GenerateVisibilityGrid(ctx context.Context, year int, month time.Month, day int, opts GridOptions) ([]VisibilityPoint, error) {
	opts.setDefaults()
	lats, lons := gridLattice(opts.StepDeg, opts.MaxLat)
	total := len(lats) * len(lons)
	points := make([]VisibilityPoint, total)

	// The SAAO ladder wants a moon age; the conjunction is the same for
	// every cell of a run, so resolve it once up front.
	var conjTime time.Time
	if conj := e.FindConjunction(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), FrameGeocentric, nil); conj != nil {
		conjTime = conj.Time
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, lat := range lats {
		g.Go(func() error {
			row := points[i*len(lons) : (i+1)*len(lons)]
			for j, lon := range lons {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				row[j] = e.gridCell(GeoCoordinate{Lat: lat, Lon: lon}, year, month, day, conjTime, opts)
				if n := done.Add(1); opts.OnProgress != nil && n%progressEvery == 0 {
					opts.OnProgress(int(n), total)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.OnProgress != nil {
		opts.OnProgress(total, total)
	}
	return points, nil
}

// EvaluateLocation classifies a single location for the given evening using
// the same rules as a grid cell: StepDeg and MaxLat in opts are ignored.
func (e *Engine) EvaluateLocation(coord GeoCoordinate, year int, month time.Month, day int, opts GridOptions) VisibilityPoint {
	opts.setDefaults()
	var conjTime time.Time
	if conj := e.FindConjunction(time.Date(year, month, day, 12, 0, 0, 0, time.UTC), FrameGeocentric, nil); conj != nil {
		conjTime = conj.Time
	}
	return e.gridCell(coord, year, month, day, conjTime, opts)
}

// gridCell computes one lattice point. Any panic from a pathological input
// is confined to the cell, which then reports the worst zone.
func (e *Engine) gridCell(coord GeoCoordinate, year int, month time.Month, day int, conjTime time.Time, opts GridOptions) (pt VisibilityPoint) {
	pt = VisibilityPoint{Coord: coord, Class: opts.Criterion.Worst()}
	defer func() {
		if r := recover(); r != nil {
			pt = VisibilityPoint{Coord: coord, Class: opts.Criterion.Worst()}
		}
	}()

	sunset, ok := e.Sunset(coord, year, month, day)
	if !ok {
		// Polar day or night: no sunset, nothing to observe.
		return pt
	}
	pt.SunsetUTC = sunset

	// The Moon can set shortly before the Sun early in the lunation, so
	// the moonset search starts a few hours back to recover a negative lag.
	lag := 0.0
	moonset, ok := e.Moonset(coord, sunset.Add(-3*time.Hour))
	if ok {
		lag = moonset.Sub(sunset).Minutes()
	}
	pt.LagMin = lag

	evalTime := sunset
	if opts.BestTime && lag > 0 {
		evalTime = sunset.Add(time.Duration(float64(time.Minute) * lag * 4 / 9))
	}

	sun := e.eph.BodyPosition(evalTime, ephem.Sun, coord.Lat, coord.Lon)
	moon := e.eph.BodyPosition(evalTime, ephem.Moon, coord.Lat, coord.Lon)
	pt.Geometry = DeriveGeometry(sun, moon)

	obs := Observation{Geometry: pt.Geometry, MoonAltDeg: moon.AltDeg}
	if !conjTime.IsZero() {
		obs.MoonAgeHours = MoonAge(conjTime, evalTime)
	}
	pt.Class = opts.Criterion.Evaluate(obs)

	// A Moon already down at sunset is unobservable regardless of what
	// the raw geometry says.
	if lag <= 0 {
		pt.Class = opts.Criterion.Worst()
	}
	return pt
}
