package crescent

import (
	"fmt"
	"strings"

	"github.com/soniakeys/meeus/v3/base"
)

// Color is the 4-level rendering hint attached to every classification,
// ordered best to worst. It deliberately says nothing about which criterion
// produced it.
type Color int

const (
	Green Color = iota
	Yellow
	Orange
	Red
)

func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Orange:
		return "orange"
	default:
		return "red"
	}
}

// MarshalText implements encoding.TextMarshaler so colors serialize as
// their lowercase names in JSON and msgpack.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Criterion selects one of the published crescent visibility criteria.
type Criterion int

const (
	Yallop Criterion = iota
	Odeh
	SAAO
	Shaukat
)

func (c Criterion) String() string {
	switch c {
	case Yallop:
		return "yallop"
	case Odeh:
		return "odeh"
	case SAAO:
		return "saao"
	default:
		return "shaukat"
	}
}

// ParseCriterion maps a criterion name to its enum value.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(s) {
	case "yallop":
		return Yallop, nil
	case "odeh":
		return Odeh, nil
	case "saao":
		return SAAO, nil
	case "shaukat":
		return Shaukat, nil
	}
	return Yallop, fmt.Errorf("unknown visibility criterion: %q", s)
}

// Classification is one criterion's verdict on a crescent geometry. Zone
// labels are ordered within a criterion (A best); Value carries the
// criterion's test statistic where it has one (Yallop q, Odeh V).
type Classification struct {
	Criterion Criterion `json:"-"`
	Tag       string    `json:"criterion"`
	Zone      string    `json:"zone"`
	Value     float64   `json:"value"`
	Color     Color     `json:"color"`
}

// Observation is the evaluator input: the derived geometry plus the Moon's
// altitude at the evaluation instant and its approximate age.
type Observation struct {
	Geometry     CrescentGeometry
	MoonAltDeg   float64
	MoonAgeHours float64
}

// Evaluate classifies an observation under criterion c. Whatever the
// criterion, a Moon below the horizon at the evaluation instant forces the
// worst zone: there is no crescent to see.
func (c Criterion) Evaluate(obs Observation) Classification {
	if obs.MoonAltDeg < 0 {
		return c.Worst()
	}
	switch c {
	case Yallop:
		return evaluateYallop(obs)
	case Odeh:
		return evaluateOdeh(obs)
	case SAAO:
		return evaluateSAAO(obs)
	default:
		return evaluateShaukat(obs)
	}
}

// Worst returns criterion c's least favorable classification, used for a
// below-horizon Moon, polar no-sunset cells, and isolated cell faults.
func (c Criterion) Worst() Classification {
	zone := "D"
	if c == Yallop {
		zone = "F"
	}
	return Classification{Criterion: c, Tag: c.String(), Zone: zone, Color: Red}
}

// evaluateYallop applies the Yallop (1997) q-test. The polynomial f(W)
// models the ARCV needed for a crescent of topocentric width W arcminutes;
// q measures the margin above it in units of 10 degrees.
func evaluateYallop(obs Observation) Classification {
	f := base.Horner(obs.Geometry.WidthArcmin, 11.8371, -6.3226, 0.7319, -0.1018)
	q := (obs.Geometry.ARCVDeg - f) / 10

	var zone string
	var color Color
	switch {
	case q > 0.216:
		zone, color = "A", Green
	case q > -0.014:
		zone, color = "B", Green
	case q > -0.160:
		zone, color = "C", Yellow
	case q > -0.232:
		zone, color = "D", Orange
	case q > -0.293:
		zone, color = "E", Red
	default:
		zone, color = "F", Red
	}
	return Classification{Criterion: Yallop, Tag: "yallop", Zone: zone, Value: q, Color: color}
}

// evaluateOdeh applies Odeh (2004). Zone boundaries are inclusive: a V of
// exactly 5.65 is zone A.
func evaluateOdeh(obs Observation) Classification {
	g := base.Horner(obs.Geometry.WidthArcmin, 7.1651, -6.3226, 0.7319, -0.1018)
	v := obs.Geometry.ARCVDeg - g

	var zone string
	var color Color
	switch {
	case v >= 5.65:
		zone, color = "A", Green
	case v >= 2.0:
		zone, color = "B", Yellow
	case v >= -0.96:
		zone, color = "C", Orange
	default:
		zone, color = "D", Red
	}
	return Classification{Criterion: Odeh, Tag: "odeh", Zone: zone, Value: v, Color: color}
}

// evaluateSAAO is a simplified stand-in for the South African Astronomical
// Observatory criterion: a threshold ladder on moon altitude and age
// rather than the published model. Replace with the authoritative formula
// when adopting this criterion for real predictions.
func evaluateSAAO(obs Observation) Classification {
	alt, age := obs.MoonAltDeg, obs.MoonAgeHours

	var zone string
	var color Color
	switch {
	case alt >= 10 && age >= 20:
		zone, color = "A", Green
	case alt >= 6 && age >= 15:
		zone, color = "B", Yellow
	case alt >= 3 && age >= 12:
		zone, color = "C", Orange
	default:
		zone, color = "D", Red
	}
	return Classification{Criterion: SAAO, Tag: "saao", Zone: zone, Color: color}
}

// evaluateShaukat is a simplified stand-in for the Shaukat criterion: a
// hard 10-degree elongation gate (below the Danjon limit no crescent
// forms) followed by an altitude/elongation ladder.
func evaluateShaukat(obs Observation) Classification {
	elong := obs.Geometry.ElongationDeg
	if elong < 10 {
		return Shaukat.Worst()
	}
	alt := obs.MoonAltDeg

	var zone string
	var color Color
	switch {
	case alt >= 10 && elong >= 12:
		zone, color = "A", Green
	case alt >= 6 && elong >= 11:
		zone, color = "B", Yellow
	case alt >= 3 && elong >= 10.5:
		zone, color = "C", Orange
	default:
		zone, color = "D", Red
	}
	return Classification{Criterion: Shaukat, Tag: "shaukat", Zone: zone, Color: color}
}
