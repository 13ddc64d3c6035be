package crescent

import (
	"math"
	"time"
)

const (
	// conjunctionWindow bounds the geocentric new-moon search around the
	// reference instant.
	conjunctionWindow = 35 * 24 * time.Hour

	// topoWindow bounds the topocentric root search around the geocentric
	// solution. Lunar parallax shifts the conjunction by well under half
	// a day for any observer.
	topoWindow = 12 * time.Hour

	topoTol = time.Second
)

// FindConjunction resolves the astronomical new moon nearest ref. For
// FrameGeocentric the observer is ignored. For FrameTopocentric the
// zero-crossing of the observer's Sun-Moon ecliptic longitude difference is
// root-found within ±12 hours of the geocentric instant; when no root is
// bracketed there the geocentric instant is returned with Fallback set,
// never an error.
//
// A nil return means no conjunction exists within 35 days of ref, which
// only happens for degenerate ephemerides.
func (e *Engine) FindConjunction(ref time.Time, frame Frame, observer *GeoCoordinate) *ConjunctionEvent {
	tGeo, ok := e.eph.SearchNewMoon(ref, conjunctionWindow)
	if !ok {
		return nil
	}

	if frame == FrameGeocentric || observer == nil {
		return &ConjunctionEvent{
			Time:     tGeo,
			Frame:    FrameGeocentric,
			FrameTag: FrameGeocentric.String(),
			PhaseDeg: e.phaseDiffGeocentric(tGeo),
		}
	}

	tTopo, ok := e.topocentricRoot(tGeo, *observer)
	if !ok {
		return &ConjunctionEvent{
			Time:     tGeo,
			Frame:    FrameTopocentric,
			FrameTag: FrameTopocentric.String(),
			PhaseDeg: e.phaseDiff(tGeo, *observer),
			Fallback: true,
		}
	}
	return &ConjunctionEvent{
		Time:     tTopo,
		Frame:    FrameTopocentric,
		FrameTag: FrameTopocentric.String(),
		PhaseDeg: e.phaseDiff(tTopo, *observer),
	}
}

// phaseDiff returns the observer's topocentric Moon-minus-Sun ecliptic
// longitude difference in degrees, wrapped to (-180,180].
func (e *Engine) phaseDiff(t time.Time, obs GeoCoordinate) float64 {
	return wrap180(e.eph.TopocentricMoonEclipticLongitude(t, obs.Lat, obs.Lon) -
		e.eph.SunEclipticLongitude(t))
}

// phaseDiffGeocentric is the same difference as seen from the Earth's
// center.
func (e *Engine) phaseDiffGeocentric(t time.Time) float64 {
	return wrap180(e.eph.MoonEclipticLongitude(t) - e.eph.SunEclipticLongitude(t))
}

// topocentricRoot bisects the longitude-difference zero crossing in
// [tGeo-12h, tGeo+12h]. The difference increases monotonically through
// the conjunction at roughly half a degree per hour.
func (e *Engine) topocentricRoot(tGeo time.Time, obs GeoCoordinate) (time.Time, bool) {
	a := tGeo.Add(-topoWindow)
	b := tGeo.Add(topoWindow)
	fa := e.phaseDiff(a, obs)
	fb := e.phaseDiff(b, obs)
	if fa >= 0 || fb <= 0 {
		return time.Time{}, false
	}

	for b.Sub(a) > topoTol {
		mid := a.Add(b.Sub(a) / 2)
		if e.phaseDiff(mid, obs) < 0 {
			a = mid
		} else {
			b = mid
		}
	}
	return a.Add(b.Sub(a) / 2), true
}

func wrap180(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}
