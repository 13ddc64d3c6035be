package crescent

import (
	"math"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// Sunset finds the sunset following local solar noon on the given calendar
// date at coord. The observer's zone is approximated as round(lon/15)
// hours from UTC, so "the date" means the civil date an inhabitant of that
// longitude would use. ok is false during polar day and night.
func (e *Engine) Sunset(coord GeoCoordinate, year int, month time.Month, day int) (time.Time, bool) {
	noon := localNoonUTC(coord.Lon, year, month, day)
	return e.eph.SearchAltitudeCrossing(ephem.Sun, coord.Lat, coord.Lon,
		ephem.SunSettingAltDeg, noon, 24*time.Hour, ephem.Setting)
}

// Moonset finds the next moonset after the given instant, searching one
// day forward. ok is false when the Moon never sets in that window.
// Ephemerides that know the Moon's parallax-dependent standard setting
// altitude are asked for it; otherwise the solar value is close enough.
func (e *Engine) Moonset(coord GeoCoordinate, after time.Time) (time.Time, bool) {
	target := ephem.SunSettingAltDeg
	if p, ok := e.eph.(interface{ MoonSettingAltDeg(time.Time) float64 }); ok {
		target = p.MoonSettingAltDeg(after)
	}
	return e.eph.SearchAltitudeCrossing(ephem.Moon, coord.Lat, coord.Lon,
		target, after, 24*time.Hour, ephem.Setting)
}

// localNoonUTC returns approximate local solar noon for a calendar date,
// expressed in UTC, using the round(lon/15) zone estimate.
func localNoonUTC(lon float64, year int, month time.Month, day int) time.Time {
	tz := time.Duration(math.Round(lon/15)) * time.Hour
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Add(-tz)
}
