package crescent

import (
	"math"

	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

// DeriveGeometry computes the crescent observability quantities from the
// Sun and Moon positions at one instant. It is a pure function.
//
// Elongation is the angular separation of the geocentric directions, not
// the horizon-projected separation. The crescent semi-width follows the
// Yallop construction: the lunar semi-diameter, augmented for the
// observer's reduced distance when the Moon is up, scaled by the versine
// of the elongation.
func DeriveGeometry(sun, moon ephem.Position) CrescentGeometry {
	elong := angularSeparation(sun.RADeg, sun.DecDeg, moon.RADeg, moon.DecDeg)

	sinπ := math.Min(ephem.EarthRadiusKm/moon.DistKm, 1)
	π := math.Asin(sinπ)
	sd := 0.27245 * π
	sdPrime := sd * (1 + math.Sin(moon.AltDeg*math.Pi/180)*sinπ)
	widthRad := sdPrime * (1 - math.Cos(elong*math.Pi/180))

	return CrescentGeometry{
		ElongationDeg: elong,
		ARCVDeg:       moon.AltDeg - sun.AltDeg,
		WidthArcmin:   widthRad * 180 / math.Pi * 60,
		MoonDistKm:    moon.DistKm,
	}
}

// angularSeparation returns the great-circle angle in degrees between two
// equatorial directions given in degrees (spherical law of cosines,
// clamped for numerical safety).
func angularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	const d2r = math.Pi / 180
	cosSep := math.Sin(dec1*d2r)*math.Sin(dec2*d2r) +
		math.Cos(dec1*d2r)*math.Cos(dec2*d2r)*math.Cos((ra1-ra2)*d2r)
	if cosSep > 1 {
		cosSep = 1
	} else if cosSep < -1 {
		cosSep = -1
	}
	return math.Acos(cosSep) / d2r
}

// brightLimbTilt returns the direction of the Sun as seen from the Moon in
// the observer's sky, measured from the zenith direction: 0 means the Sun
// is directly above the Moon, 90 directly to its right. The azimuth
// difference is scaled by cos(moon altitude) to linearize the tangent
// plane.
func brightLimbTilt(sun, moon SkyPosition) float64 {
	const d2r = math.Pi / 180
	dAlt := (sun.AltDeg - moon.AltDeg) * d2r
	dAz := (sun.AzDeg - moon.AzDeg) * d2r * math.Cos(moon.AltDeg*d2r)
	return 90 - math.Atan2(dAlt, dAz)/d2r
}
