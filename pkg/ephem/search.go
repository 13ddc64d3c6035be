package ephem

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
)

// CrossingDir selects which direction of a horizon crossing to search for.
type CrossingDir int

const (
	Rising CrossingDir = iota
	Setting
)

const (
	scanStep   = 10 * time.Minute
	bisectTol  = 500 * time.Millisecond
	synodicMonth = 29.530588853
)

// SearchAltitudeCrossing finds the next instant after `after`, within
// `window`, at which body b crosses targetAltDeg in the given direction for
// an observer at (lat, lon). It reports ok=false when no crossing exists in
// the window, which is the normal outcome during polar day and night.
//
// The search samples at a coarse step to bracket a sign change, then
// bisects the bracket to sub-second precision.
func (p *Provider) SearchAltitudeCrossing(b Body, lat, lon, targetAltDeg float64, after time.Time, window time.Duration, dir CrossingDir) (time.Time, bool) {
	f := func(t time.Time) float64 {
		return p.BodyPosition(t, b, lat, lon).AltDeg - targetAltDeg
	}

	prevT := after
	prevV := f(prevT)
	end := after.Add(window)

	for t := after.Add(scanStep); !t.After(end); t = t.Add(scanStep) {
		v := f(t)
		if crosses(prevV, v, dir) {
			return bisect(f, prevT, t, dir), true
		}
		prevT, prevV = t, v
	}
	return time.Time{}, false
}

func crosses(a, b float64, dir CrossingDir) bool {
	if dir == Rising {
		return a < 0 && b >= 0
	}
	return a > 0 && b <= 0
}

func bisect(f func(time.Time) float64, a, b time.Time, dir CrossingDir) time.Time {
	va := f(a)
	for b.Sub(a) > bisectTol {
		mid := a.Add(b.Sub(a) / 2)
		vm := f(mid)
		if crosses(va, vm, dir) {
			b = mid
		} else {
			a, va = mid, vm
		}
	}
	return a.Add(b.Sub(a) / 2)
}

// SearchNewMoon returns the instant of the ecliptic new moon nearest to
// `near`. It reports ok=false when that instant falls outside `window` of
// `near`. The underlying theory snaps to the nearest lunation, so the
// candidate is never more than about 15 days away.
func (p *Provider) SearchNewMoon(near time.Time, window time.Duration) (time.Time, bool) {
	jdENear := jde(near)
	y := 2000 + (jdENear-j2000)/365.25
	jdENew := moonphase.New(y)

	// moonphase.New works from a mean-lunation index derived from the
	// decimal year; near a lunation boundary it can snap one cycle off.
	// Nudge toward the reference instant when that happens.
	if d := jdENew - jdENear; d > synodicMonth/2 {
		jdENew = moonphase.New(y - synodicMonth/2/365.25)
	} else if d < -synodicMonth/2 {
		jdENew = moonphase.New(y + synodicMonth/2/365.25)
	}

	tNew := julian.JDToTime(jdENew - deltaT(near)/86400)
	if diff := tNew.Sub(near); diff > window || diff < -window {
		return time.Time{}, false
	}
	return tNew, true
}

// j2000 is the JDE of the J2000.0 epoch.
const j2000 = 2451545.0
