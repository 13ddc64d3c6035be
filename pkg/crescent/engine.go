package crescent

import (
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// Ephemeris is the narrow slice of the position provider the engine
// consumes. *ephem.Provider satisfies it; tests substitute fakes to force
// polar no-event cases, missing conjunction roots, and cell faults.
type Ephemeris interface {
	BodyPosition(t time.Time, b ephem.Body, lat, lon float64) ephem.Position
	MoonIllumination(t time.Time) float64
	SunEclipticLongitude(t time.Time) float64
	MoonEclipticLongitude(t time.Time) float64
	TopocentricMoonEclipticLongitude(t time.Time, lat, lon float64) float64
	SearchAltitudeCrossing(b ephem.Body, lat, lon, targetAltDeg float64, after time.Time, window time.Duration, dir ephem.CrossingDir) (time.Time, bool)
	SearchNewMoon(near time.Time, window time.Duration) (time.Time, bool)
}

// Engine binds the visibility computations to an ephemeris. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	eph Ephemeris
}

func NewEngine(eph Ephemeris) *Engine {
	return &Engine{eph: eph}
}
