package crescent

import (
	"errors"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// ErrNoSunset reports that the Sun does not set on the requested date at
// the requested location (polar day or night).
var ErrNoSunset = errors.New("no sunset at this location on this date")

// TrajectoryOptions configures the sampling cadence of a trajectory run.
type TrajectoryOptions struct {
	StepMin     int // minutes between frames; default 2
	DurationMin int // minutes covered from sunset, inclusive; default 150
}

func (o *TrajectoryOptions) setDefaults() {
	if o.StepMin <= 0 {
		o.StepMin = 2
	}
	if o.DurationMin <= 0 {
		o.DurationMin = 150
	}
}

// SimulationTrajectory samples Sun and Moon sky positions from sunset at a
// fixed cadence for one location and date. The geocentric conjunction is
// resolved once per run and its age stamped on every frame; when it cannot
// be resolved the frames carry no age. The frames are materialized and
// strictly time-ordered.
func (e *Engine) SimulationTrajectory(coord GeoCoordinate, year int, month time.Month, day int, opts TrajectoryOptions) (*Trajectory, error) {
	opts.setDefaults()

	sunset, ok := e.Sunset(coord, year, month, day)
	if !ok {
		return nil, ErrNoSunset
	}

	conj := e.FindConjunction(sunset, FrameGeocentric, nil)

	n := opts.DurationMin/opts.StepMin + 1
	frames := make([]SimulationFrame, 0, n)
	for i := 0; i < n; i++ {
		offset := i * opts.StepMin
		t := sunset.Add(time.Duration(offset) * time.Minute)

		sun := e.eph.BodyPosition(t, ephem.Sun, coord.Lat, coord.Lon)
		moon := e.eph.BodyPosition(t, ephem.Moon, coord.Lat, coord.Lon)
		sunSky := SkyPosition{AltDeg: sun.AltDeg, AzDeg: sun.AzDeg}
		moonSky := SkyPosition{AltDeg: moon.AltDeg, AzDeg: moon.AzDeg}

		frame := SimulationFrame{
			OffsetMin:     float64(offset),
			Sun:           sunSky,
			Moon:          moonSky,
			Illumination:  e.eph.MoonIllumination(t),
			ElongationDeg: DeriveGeometry(sun, moon).ElongationDeg,
			TiltDeg:       brightLimbTilt(sunSky, moonSky),
		}
		if conj != nil {
			age := MoonAge(conj.Time, t)
			frame.MoonAgeHours = &age
		}
		frames = append(frames, frame)
	}

	return &Trajectory{
		Coord:       coord,
		Sunset:      sunset,
		Conjunction: conj,
		Frames:      frames,
	}, nil
}
