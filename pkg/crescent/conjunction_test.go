package crescent

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

func TestFindConjunctionGeocentric(t *testing.T) {
	engine := NewEngine(ephem.NewProvider())

	// Known new moons (USNO/Astronomical Almanac).
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "April 2024 new moon",
			ref:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
		},
		{
			name: "January 2023 new moon",
			ref:  time.Date(2023, 1, 25, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conj := engine.FindConjunction(tt.ref, FrameGeocentric, nil)
			if conj == nil {
				t.Fatal("expected a conjunction, got nil")
			}
			if conj.Fallback {
				t.Error("geocentric result flagged as fallback")
			}
			if diff := conj.Time.Sub(tt.want); diff > 10*time.Minute || diff < -10*time.Minute {
				t.Errorf("conjunction at %v, expected %v +/- 10min", conj.Time, tt.want)
			}
			if math.Abs(conj.PhaseDeg) > 0.05 {
				t.Errorf("phase at conjunction = %.4f deg, expected ~0", conj.PhaseDeg)
			}
		})
	}
}

func TestFindConjunctionTopocentric(t *testing.T) {
	fake := newFakeEphemeris()
	engine := NewEngine(fake)
	mecca := GeoCoordinate{Lat: 21.42, Lon: 39.83}

	t.Run("root found inside the window", func(t *testing.T) {
		// A half-degree topocentric shift moves the root one hour earlier.
		fake.topoOffset = 0.5
		conj := engine.FindConjunction(fake.conjTime.Add(-24*time.Hour), FrameTopocentric, &mecca)
		if conj == nil {
			t.Fatal("expected a conjunction, got nil")
		}
		if conj.Fallback {
			t.Error("root was bracketed but result flagged as fallback")
		}
		want := fake.conjTime.Add(-time.Hour)
		if diff := conj.Time.Sub(want); diff > time.Minute || diff < -time.Minute {
			t.Errorf("topocentric conjunction at %v, expected %v", conj.Time, want)
		}
	})

	t.Run("no root degrades to geocentric with fallback flag", func(t *testing.T) {
		fake.flatTopo = true
		defer func() { fake.flatTopo = false }()

		conj := engine.FindConjunction(fake.conjTime.Add(-24*time.Hour), FrameTopocentric, &mecca)
		if conj == nil {
			t.Fatal("expected a fallback conjunction, got nil")
		}
		if !conj.Fallback {
			t.Error("expected Fallback=true when no topocentric root is bracketed")
		}
		if !conj.Time.Equal(fake.conjTime) {
			t.Errorf("fallback time = %v, expected the geocentric instant %v", conj.Time, fake.conjTime)
		}
	})

	t.Run("no conjunction in window yields nil", func(t *testing.T) {
		fake.noConj = true
		defer func() { fake.noConj = false }()

		if conj := engine.FindConjunction(fake.conjTime, FrameTopocentric, &mecca); conj != nil {
			t.Errorf("expected nil, got %+v", conj)
		}
	})
}

func TestMoonAge(t *testing.T) {
	conj := time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC)
	obs := time.Date(2024, 4, 9, 18, 21, 0, 0, time.UTC)
	if age := MoonAge(conj, obs); math.Abs(age-24) > 1e-9 {
		t.Errorf("MoonAge = %.6f, expected 24", age)
	}
}
