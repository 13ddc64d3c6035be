// Package ephem provides Sun and Moon positions for an Earth-bound observer
// using the Meeus analytic theories. Accuracy is roughly an arcminute for the
// Moon and a few arcseconds for the Sun, which is plenty for crescent
// visibility work. The public surface speaks degrees, kilometers, and
// time.Time; radians stay internal.
package ephem

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// Body selects the target of a position or event query.
type Body int

const (
	Sun Body = iota
	Moon
)

func (b Body) String() string {
	if b == Sun {
		return "sun"
	}
	return "moon"
}

const (
	// EarthRadiusKm is the equatorial radius used for lunar parallax.
	EarthRadiusKm = 6378.137

	kmPerAU = 149597870.7

	// SunSettingAltDeg is the standard refracted altitude of the Sun's
	// center at sunset: -50 arcminutes.
	SunSettingAltDeg = -0.8333
)

// Position holds one body's position for one instant and observer.
// Altitude and azimuth are topocentric (airless); right ascension,
// declination, and distance are geocentric apparent values, which is what
// elongation and crescent width are defined against.
type Position struct {
	AltDeg float64 // degrees above the horizon, signed
	AzDeg  float64 // degrees east of true north, [0,360)
	RADeg  float64
	DecDeg float64
	DistKm float64
}

// Provider computes positions and bounded event searches. It is stateless
// and safe for concurrent use.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// jde returns the Julian ephemeris day (TT) for a UTC instant.
func jde(t time.Time) float64 {
	return julian.TimeToJD(t) + deltaT(t)/86400
}

// BodyPosition returns the position of b at t for an observer at the given
// geographic latitude and longitude (degrees, east positive).
func (p *Provider) BodyPosition(t time.Time, b Body, lat, lon float64) Position {
	jd := julian.TimeToJD(t)
	jdE := jde(t)

	var α, δ, dist float64
	switch b {
	case Sun:
		ra, dec := solar.ApparentEquatorial(jdE)
		α, δ = ra.Rad(), dec.Rad()
		dist = solar.Radius(base.J2000Century(jdE)) * kmPerAU
	case Moon:
		α, δ, dist = apparentMoonEquatorial(jdE)
	}

	φ := lat * math.Pi / 180
	θ := sidereal.Apparent(jd).Rad() + lon*math.Pi/180 // local apparent sidereal time

	αt, δt := α, δ
	if b == Moon {
		// Topocentric correction matters for the Moon (up to ~1 degree
		// in altitude); solar parallax is under 9 arcseconds and skipped.
		π := moonposition.Parallax(dist).Rad()
		αt, δt = topocentricEq(α, δ, π, φ, θ)
	}

	alt, az := horizontal(αt, δt, φ, θ)

	return Position{
		AltDeg: alt * 180 / math.Pi,
		AzDeg:  az * 180 / math.Pi,
		RADeg:  α * 180 / math.Pi,
		DecDeg: δ * 180 / math.Pi,
		DistKm: dist,
	}
}

// apparentMoonEquatorial returns the Moon's geocentric apparent right
// ascension and declination in radians and its distance in km.
func apparentMoonEquatorial(jdE float64) (α, δ, dist float64) {
	λ, β, dist := moonposition.Position(jdE)
	Δψ, Δε := nutation.Nutation(jdE)
	ε := nutation.MeanObliquity(jdE) + Δε
	α, δ = eclToEq(λ.Rad()+Δψ.Rad(), β.Rad(), ε.Rad())
	return α, δ, dist
}

// eclToEq converts ecliptic longitude and latitude to equatorial right
// ascension and declination, all radians (Meeus eq. 13.3, 13.4).
func eclToEq(λ, β, ε float64) (α, δ float64) {
	sλ, cλ := math.Sincos(λ)
	sβ, cβ := math.Sincos(β)
	sε, cε := math.Sincos(ε)
	α = math.Atan2(sλ*cε-math.Tan(β)*sε, cλ)
	if α < 0 {
		α += 2 * math.Pi
	}
	δ = math.Asin(sβ*cε + cβ*sε*sλ)
	return α, δ
}

// eqToEclLon rotates equatorial coordinates into ecliptic longitude
// (Meeus eq. 13.1), all radians.
func eqToEclLon(α, δ, ε float64) float64 {
	sα, cα := math.Sincos(α)
	sε, cε := math.Sincos(ε)
	λ := math.Atan2(sα*cε+math.Tan(δ)*sε, cα)
	if λ < 0 {
		λ += 2 * math.Pi
	}
	return λ
}

// topocentricEq shifts geocentric equatorial coordinates to the observer
// (Meeus ch. 40). π is the body's horizontal parallax, φ the geographic
// latitude, θ the local sidereal time; all angles radians.
func topocentricEq(α, δ, π, φ, θ float64) (αt, δt float64) {
	// Observer's geocentric position (Meeus eq. 11.1, sea level).
	u := math.Atan(0.99664719 * math.Tan(φ))
	ρsφ := 0.99664719 * math.Sin(u)
	ρcφ := math.Cos(u)

	H := θ - α
	sπ := math.Sin(π)
	sH, cH := math.Sincos(H)
	sδ, cδ := math.Sincos(δ)

	Δα := math.Atan2(-ρcφ*sπ*sH, cδ-ρcφ*sπ*cH)
	αt = α + Δα
	δt = math.Atan2((sδ-ρsφ*sπ)*math.Cos(Δα), cδ-ρcφ*sπ*cH)
	return αt, δt
}

// horizontal converts equatorial coordinates to altitude and azimuth
// (radians, azimuth from north through east).
func horizontal(α, δ, φ, θ float64) (alt, az float64) {
	H := θ - α
	sH, cH := math.Sincos(H)
	sδ, cδ := math.Sincos(δ)
	sφ, cφ := math.Sincos(φ)

	alt = math.Asin(sφ*sδ + cφ*cδ*cH)
	az = math.Atan2(sH, cH*sφ-math.Tan(δ)*cφ) + math.Pi
	if az >= 2*math.Pi {
		az -= 2 * math.Pi
	}
	return alt, az
}

// MoonIllumination returns the illuminated fraction of the Moon's disk at t
// from the distance-based phase angle relation (Meeus eq. 48.2, 48.3).
func (p *Provider) MoonIllumination(t time.Time) float64 {
	jdE := jde(t)

	αs, δs := solar.ApparentEquatorial(jdE)
	R := solar.Radius(base.J2000Century(jdE)) * kmPerAU
	αm, δm, Δ := apparentMoonEquatorial(jdE)

	cψ := math.Sin(δs.Rad())*math.Sin(δm) +
		math.Cos(δs.Rad())*math.Cos(δm)*math.Cos(αs.Rad()-αm)
	ψ := math.Acos(clamp1(cψ))
	i := math.Atan2(R*math.Sin(ψ), Δ-R*math.Cos(ψ))
	return base.Illuminated(unit.Angle(i))
}

// SunEclipticLongitude returns the Sun's apparent geocentric ecliptic
// longitude at t, in degrees. Solar parallax is negligible, so this also
// serves as the topocentric longitude for conjunction work.
func (p *Provider) SunEclipticLongitude(t time.Time) float64 {
	T := base.J2000Century(jde(t))
	return solar.ApparentLongitude(T).Deg()
}

// MoonEclipticLongitude returns the Moon's apparent geocentric ecliptic
// longitude at t, in degrees.
func (p *Provider) MoonEclipticLongitude(t time.Time) float64 {
	jdE := jde(t)
	λ, _, _ := moonposition.Position(jdE)
	Δψ, _ := nutation.Nutation(jdE)
	return unit.Angle(λ.Rad() + Δψ.Rad()).Mod1().Deg()
}

// TopocentricMoonEclipticLongitude returns the Moon's ecliptic longitude as
// seen by an observer at (lat, lon), in degrees. The geocentric apparent
// equatorial position is parallax-shifted to the observer and rotated back
// into the ecliptic under the mean obliquity.
func (p *Provider) TopocentricMoonEclipticLongitude(t time.Time, lat, lon float64) float64 {
	jd := julian.TimeToJD(t)
	jdE := jde(t)

	α, δ, dist := apparentMoonEquatorial(jdE)
	π := moonposition.Parallax(dist).Rad()
	φ := lat * math.Pi / 180
	θ := sidereal.Apparent(jd).Rad() + lon*math.Pi/180

	αt, δt := topocentricEq(α, δ, π, φ, θ)
	ε := nutation.MeanObliquity(jdE).Rad()
	return eqToEclLon(αt, δt, ε) * 180 / math.Pi
}

// MoonSettingAltDeg returns the Moon's standard setting altitude at t in
// degrees: 0.7275 times the horizontal parallax minus 34 arcminutes of
// refraction (Meeus ch. 15).
func (p *Provider) MoonSettingAltDeg(t time.Time) float64 {
	_, _, dist := moonposition.Position(jde(t))
	π := moonposition.Parallax(dist).Deg()
	return 0.7275*π - 34.0/60
}

func clamp1(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
