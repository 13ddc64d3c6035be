package ephem

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
)

// deltaT returns TT-UT1 in seconds for t, from the Espenak & Meeus
// piecewise polynomial fits. UT1 is taken as UTC here; the sub-second
// difference is far below the accuracy of the position theories.
func deltaT(t time.Time) float64 {
	y := decimalYear(t)
	switch {
	case y < 1900:
		u := y - 1860
		return base.Horner(u, 7.62, 0.5737, -0.251754, 0.01680668,
			-0.0004473624, 1/233174.0)
	case y < 1920:
		u := y - 1900
		return base.Horner(u, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1941:
		u := y - 1920
		return base.Horner(u, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1961:
		u := y - 1950
		return base.Horner(u, 29.07, 0.407, -1/233.0, 1/2547.0)
	case y < 1986:
		u := y - 1975
		return base.Horner(u, 45.45, 1.067, -1/260.0, -1/718.0)
	case y < 2005:
		u := y - 2000
		return base.Horner(u, 63.86, 0.3345, -0.060374, 0.0017275,
			0.000651814, 0.00002373599)
	case y < 2050:
		u := y - 2000
		return base.Horner(u, 62.92, 0.32217, 0.005589)
	case y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

func decimalYear(t time.Time) float64 {
	year := t.Year()
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return float64(year) + t.Sub(start).Seconds()/end.Sub(start).Seconds()
}
