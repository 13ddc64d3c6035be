package crescent

import (
	"errors"
	"testing"
	"time"
)

func TestSimulationTrajectory(t *testing.T) {
	engine := NewEngine(newFakeEphemeris())

	traj, err := engine.SimulationTrajectory(GeoCoordinate{Lat: 0, Lon: 0}, 2024, time.April, 9, TrajectoryOptions{})
	if err != nil {
		t.Fatalf("SimulationTrajectory: %v", err)
	}

	if len(traj.Frames) != 76 {
		t.Fatalf("frame count = %d, expected 76 (150 minutes at 2-minute steps, inclusive)", len(traj.Frames))
	}
	if traj.Sunset.IsZero() {
		t.Error("sunset instant is zero")
	}

	for i, f := range traj.Frames {
		if want := float64(i * 2); f.OffsetMin != want {
			t.Fatalf("frame %d offset = %.1f, expected %.1f", i, f.OffsetMin, want)
		}
		if f.Illumination < 0 || f.Illumination > 1 {
			t.Errorf("frame %d illumination = %.4f, out of [0,1]", i, f.Illumination)
		}
	}
	if last := traj.Frames[len(traj.Frames)-1].OffsetMin; last != 150 {
		t.Errorf("final offset = %.1f, expected exactly 150", last)
	}

	if traj.Conjunction == nil {
		t.Fatal("expected the geocentric conjunction to be resolved once per run")
	}
	for i, f := range traj.Frames {
		if f.MoonAgeHours == nil {
			t.Fatalf("frame %d missing moon age despite resolved conjunction", i)
		}
		want := traj.Sunset.Add(time.Duration(f.OffsetMin)*time.Minute).Sub(traj.Conjunction.Time).Hours()
		if diff := *f.MoonAgeHours - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("frame %d age = %.6f, expected %.6f", i, *f.MoonAgeHours, want)
		}
	}
}

func TestSimulationTrajectoryCustomCadence(t *testing.T) {
	engine := NewEngine(newFakeEphemeris())

	traj, err := engine.SimulationTrajectory(GeoCoordinate{Lat: 30, Lon: 45}, 2024, time.April, 9,
		TrajectoryOptions{StepMin: 5, DurationMin: 60})
	if err != nil {
		t.Fatalf("SimulationTrajectory: %v", err)
	}
	if len(traj.Frames) != 13 {
		t.Fatalf("frame count = %d, expected 13", len(traj.Frames))
	}
	prev := -1.0
	for _, f := range traj.Frames {
		if f.OffsetMin <= prev {
			t.Fatalf("offsets not strictly increasing at %.1f", f.OffsetMin)
		}
		prev = f.OffsetMin
	}
}

func TestSimulationTrajectoryPolar(t *testing.T) {
	fake := newFakeEphemeris()
	fake.polar = true
	engine := NewEngine(fake)

	_, err := engine.SimulationTrajectory(GeoCoordinate{Lat: 78, Lon: 15}, 2024, time.June, 21, TrajectoryOptions{})
	if !errors.Is(err, ErrNoSunset) {
		t.Errorf("err = %v, expected ErrNoSunset", err)
	}
}

func TestSimulationTrajectoryNoConjunction(t *testing.T) {
	fake := newFakeEphemeris()
	fake.noConj = true
	engine := NewEngine(fake)

	traj, err := engine.SimulationTrajectory(GeoCoordinate{Lat: 0, Lon: 0}, 2024, time.April, 9, TrajectoryOptions{})
	if err != nil {
		t.Fatalf("SimulationTrajectory: %v", err)
	}
	if traj.Conjunction != nil {
		t.Error("expected nil conjunction when the search finds no root")
	}
	for i, f := range traj.Frames {
		if f.MoonAgeHours != nil {
			t.Fatalf("frame %d carries a moon age without a conjunction", i)
		}
	}
}
