package crescent

import (
	"testing"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// Sunset fixtures computed against the USNO almanac; the tolerance covers
// the truncated position theories plus the airless-vs-refracted horizon.
func TestSunsetKnownEvents(t *testing.T) {
	engine := NewEngine(ephem.NewProvider())

	tests := []struct {
		name  string
		coord GeoCoordinate
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{
			name:  "Greenwich midsummer",
			coord: GeoCoordinate{Lat: 51.48, Lon: 0},
			year:  2024, month: time.June, day: 21,
			want: time.Date(2024, 6, 21, 20, 21, 0, 0, time.UTC),
		},
		{
			name:  "equator at the March equinox",
			coord: GeoCoordinate{Lat: 0, Lon: 0},
			year:  2024, month: time.March, day: 20,
			want: time.Date(2024, 3, 20, 18, 14, 0, 0, time.UTC),
		},
		{
			name:  "Sydney in winter",
			coord: GeoCoordinate{Lat: -33.87, Lon: 151.21},
			year:  2024, month: time.June, day: 21,
			want: time.Date(2024, 6, 21, 6, 53, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := engine.Sunset(tt.coord, tt.year, tt.month, tt.day)
			if !ok {
				t.Fatal("no sunset found")
			}
			if diff := got.Sub(tt.want); diff > 10*time.Minute || diff < -10*time.Minute {
				t.Errorf("sunset at %v, expected %v +/- 10min", got, tt.want)
			}
		})
	}
}

func TestSunsetPolar(t *testing.T) {
	engine := NewEngine(ephem.NewProvider())

	tests := []struct {
		name  string
		coord GeoCoordinate
		month time.Month
		day   int
	}{
		{"Svalbard polar day", GeoCoordinate{Lat: 78.22, Lon: 15.63}, time.June, 21},
		{"Svalbard polar night", GeoCoordinate{Lat: 78.22, Lon: 15.63}, time.December, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := engine.Sunset(tt.coord, 2024, tt.month, tt.day); ok {
				t.Error("expected no sunset, got one")
			}
		})
	}
}

func TestMoonsetFollowsSunsetEarlyLunation(t *testing.T) {
	engine := NewEngine(ephem.NewProvider())
	coord := GeoCoordinate{Lat: 0, Lon: 0}

	// The evening after the April 2024 new moon the young Moon trails the
	// Sun down by well under two hours.
	sunset, ok := engine.Sunset(coord, 2024, time.April, 9)
	if !ok {
		t.Fatal("no sunset found")
	}
	moonset, ok := engine.Moonset(coord, sunset.Add(-3*time.Hour))
	if !ok {
		t.Fatal("no moonset found")
	}
	lag := moonset.Sub(sunset)
	if lag <= 0 || lag > 2*time.Hour {
		t.Errorf("moonset lag = %v, expected within (0, 2h]", lag)
	}
}

// Regression fixture from the engine's reference outputs: the evening
// after the April 2024 new moon, an equatorial observer sees a roughly
// day-old moon that Odeh places outside the not-visible zone.
func TestOdehRegressionEquatorDayOldMoon(t *testing.T) {
	engine := NewEngine(ephem.NewProvider())
	coord := GeoCoordinate{Lat: 0, Lon: 0}

	sunset, ok := engine.Sunset(coord, 2024, time.April, 9)
	if !ok {
		t.Fatal("no sunset found")
	}

	sun := engine.eph.BodyPosition(sunset, ephem.Sun, coord.Lat, coord.Lon)
	moon := engine.eph.BodyPosition(sunset, ephem.Moon, coord.Lat, coord.Lon)
	g := DeriveGeometry(sun, moon)

	if g.ElongationDeg < 8 || g.ElongationDeg > 16 {
		t.Errorf("elongation = %.2f, expected roughly 8-16 degrees a day past conjunction", g.ElongationDeg)
	}
	if moon.AltDeg <= 0 {
		t.Fatalf("moon altitude at sunset = %.2f, expected above the horizon", moon.AltDeg)
	}

	cls := Odeh.Evaluate(Observation{Geometry: g, MoonAltDeg: moon.AltDeg, MoonAgeHours: 24})
	if cls.Zone == "D" {
		t.Errorf("Odeh zone = D (V=%.3f), expected a potentially visible crescent", cls.Value)
	}
}
