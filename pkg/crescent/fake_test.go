package crescent

import (
	"math"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// fakeEphemeris is an analytic stand-in for the Meeus provider. The Sun
// peaks at local noon and sets near local 18:00; the Moon tracks it with a
// configurable lag. Conjunction longitudes are linear in time so the root
// finders have exact, known answers.
type fakeEphemeris struct {
	moonLagHours float64 // how long after the Sun the Moon sets
	elongDeg     float64 // constant Sun-Moon separation
	conjTime     time.Time
	noConj       bool    // SearchNewMoon finds nothing
	polar        bool    // the Sun never sets
	topoOffset   float64 // constant shift of the topocentric Moon longitude
	flatTopo     bool    // topocentric difference never crosses zero
	panicLat     float64 // BodyPosition panics at this latitude
	panicSet     bool
}

func newFakeEphemeris() *fakeEphemeris {
	return &fakeEphemeris{
		moonLagHours: 1,
		elongDeg:     12,
		conjTime:     time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
	}
}

func (f *fakeEphemeris) localHour(t time.Time, lon float64) float64 {
	utc := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	return math.Mod(utc+lon/15+48, 24)
}

func (f *fakeEphemeris) altitude(t time.Time, b ephem.Body, lon float64) float64 {
	if f.polar && b == ephem.Sun {
		return 10
	}
	h := f.localHour(t, lon)
	peak := 12.0
	if b == ephem.Moon {
		peak += f.moonLagHours
	}
	return 50 * math.Cos((h-peak)/24*2*math.Pi)
}

func (f *fakeEphemeris) BodyPosition(t time.Time, b ephem.Body, lat, lon float64) ephem.Position {
	if f.panicSet && lat == f.panicLat {
		panic("pathological cell")
	}
	p := ephem.Position{
		AltDeg: f.altitude(t, b, lon),
		AzDeg:  250,
		DistKm: 1.496e8,
	}
	if b == ephem.Moon {
		p.RADeg = f.elongDeg
		p.DistKm = 380000
	}
	return p
}

func (f *fakeEphemeris) MoonIllumination(time.Time) float64 { return 0.01 }

func (f *fakeEphemeris) SunEclipticLongitude(time.Time) float64 { return 0 }

// MoonEclipticLongitude moves through the Sun's longitude at 0.5 deg/hour,
// crossing zero exactly at conjTime.
func (f *fakeEphemeris) MoonEclipticLongitude(t time.Time) float64 {
	return 0.5 * t.Sub(f.conjTime).Hours()
}

func (f *fakeEphemeris) TopocentricMoonEclipticLongitude(t time.Time, lat, lon float64) float64 {
	if f.flatTopo {
		return 5
	}
	return f.MoonEclipticLongitude(t) + f.topoOffset
}

func (f *fakeEphemeris) SearchAltitudeCrossing(b ephem.Body, lat, lon, targetAltDeg float64, after time.Time, window time.Duration, dir ephem.CrossingDir) (time.Time, bool) {
	prevT := after
	prev := f.altitude(prevT, b, lon) - targetAltDeg
	end := after.Add(window)
	for t := after.Add(time.Minute); !t.After(end); t = t.Add(time.Minute) {
		v := f.altitude(t, b, lon) - targetAltDeg
		if dir == ephem.Setting && prev > 0 && v <= 0 {
			return t, true
		}
		if dir == ephem.Rising && prev < 0 && v >= 0 {
			return t, true
		}
		prevT, prev = t, v
	}
	_ = prevT
	return time.Time{}, false
}

func (f *fakeEphemeris) SearchNewMoon(near time.Time, window time.Duration) (time.Time, bool) {
	if f.noConj {
		return time.Time{}, false
	}
	if d := f.conjTime.Sub(near); d > window || d < -window {
		return time.Time{}, false
	}
	return f.conjTime, true
}
