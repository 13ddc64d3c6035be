// Package crescent implements the young-crescent visibility engine: sky
// geometry at local sunset, the derived observability quantities, four
// empirical visibility criteria, geocentric and topocentric new-moon
// resolution, a world-grid visibility map generator, and a per-location
// sunset trajectory sampler.
package crescent

import "time"

// GeoCoordinate is a geographic location in degrees, east and north positive.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies in [-90,90] x [-180,180].
func (c GeoCoordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// SkyPosition is a body's topocentric horizontal position.
type SkyPosition struct {
	AltDeg float64 `json:"alt"`
	AzDeg  float64 `json:"az"`
}

// CrescentGeometry holds the standard crescent observability quantities,
// derived fresh per query and never persisted.
type CrescentGeometry struct {
	ElongationDeg float64 `json:"elongation"`   // Sun-Moon geocentric angular separation
	ARCVDeg       float64 `json:"arcv"`         // moon altitude minus sun altitude
	WidthArcmin   float64 `json:"width_arcmin"` // parallax-corrected crescent semi-width
	MoonDistKm    float64 `json:"moon_dist_km"`
}

// VisibilityPoint is one grid cell's outcome. Points are immutable; a new
// grid run replaces the whole list.
type VisibilityPoint struct {
	Coord     GeoCoordinate    `json:"coord"`
	Geometry  CrescentGeometry `json:"geometry"`
	Class     Classification   `json:"class"`
	SunsetUTC time.Time        `json:"sunset_utc"`
	LagMin    float64          `json:"lag_min"` // moonset minus sunset; <=0 means the Moon is down
}

// SimulationFrame is one sample of a sunset trajectory.
type SimulationFrame struct {
	OffsetMin     float64     `json:"time_offset_min"`
	Sun           SkyPosition `json:"sun"`
	Moon          SkyPosition `json:"moon"`
	Illumination  float64     `json:"illumination"`
	ElongationDeg float64     `json:"elongation"`
	TiltDeg       float64     `json:"tilt"` // bright-limb direction from zenith: 0 = Sun above the Moon, 90 = to its right
	MoonAgeHours  *float64    `json:"moon_age_hours,omitempty"`
}

// Trajectory is a materialized sunset-to-moonset sampling for one location,
// ordered strictly by time so playback can scrub randomly.
type Trajectory struct {
	Coord       GeoCoordinate     `json:"coord"`
	Sunset      time.Time         `json:"sunset_utc"`
	Conjunction *ConjunctionEvent `json:"conjunction,omitempty"`
	Frames      []SimulationFrame `json:"frames"`
}

// Frame tags which reference frame a conjunction was resolved in.
type Frame int

const (
	FrameGeocentric Frame = iota
	FrameTopocentric
)

func (f Frame) String() string {
	if f == FrameGeocentric {
		return "geocentric"
	}
	return "topocentric"
}

// ConjunctionEvent is a resolved astronomical new moon. PhaseDeg is the
// Sun-Moon ecliptic longitude difference at Time and should be near zero.
// Fallback marks a topocentric search that found no root in its window and
// degraded to the geocentric instant.
type ConjunctionEvent struct {
	Time     time.Time `json:"time"`
	Frame    Frame     `json:"-"`
	FrameTag string    `json:"frame"`
	PhaseDeg float64   `json:"phase_deg"`
	Fallback bool      `json:"fallback,omitempty"`
}

// MoonAge returns the elapsed hours between a conjunction and an
// observation instant, typically local sunset.
func MoonAge(conjunction, at time.Time) float64 {
	return at.Sub(conjunction).Hours()
}
