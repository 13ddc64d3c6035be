package restserver

import "github.com/chrissnell/crescentwatch/pkg/crescent"

// VisibilityMeta describes one grid computation in the final NDJSON line.
type VisibilityMeta struct {
	Date       string  `json:"date"`
	EvalTime   string  `json:"eval_time"`
	Criterion  string  `json:"criterion"`
	StepDeg    float64 `json:"step_deg"`
	MaxLat     float64 `json:"max_lat"`
	CalcTimeMs int64   `json:"calc_time_ms"`
	RunID      string  `json:"run_id,omitempty"`
}

// VisibilityPointOut is the per-cell wire shape on the visibility endpoints.
type VisibilityPointOut struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
	Zone  string  `json:"zone"`
	Value float64 `json:"value"`
}

// VisibilityResult is the payload of the final NDJSON line.
type VisibilityResult struct {
	Meta   VisibilityMeta       `json:"meta"`
	Points []VisibilityPointOut `json:"points"`
}

// progressLine is one intermediate NDJSON line.
type progressLine struct {
	Status   string `json:"status,omitempty"`
	Progress int    `json:"progress"`
}

// resultLine is the terminal NDJSON line.
type resultLine struct {
	Progress int               `json:"progress"`
	Result   *VisibilityResult `json:"result"`
}

// errorLine reports a mid-stream failure; no result line follows it.
type errorLine struct {
	Error string `json:"error"`
}

// SimulationMeta describes one trajectory computation.
type SimulationMeta struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	SunsetISO  string  `json:"sunset_iso"`
	CalcTimeMs int64   `json:"calc_time_ms"`
}

// SimulationResponse is the /api/simulation payload.
type SimulationResponse struct {
	Meta        SimulationMeta             `json:"meta"`
	Conjunction *crescent.ConjunctionEvent `json:"conjunction,omitempty"`
	Trajectory  []crescent.SimulationFrame `json:"trajectory"`
}

func pointOut(p crescent.VisibilityPoint) VisibilityPointOut {
	return VisibilityPointOut{
		Lat:   p.Coord.Lat,
		Lon:   p.Coord.Lon,
		Color: p.Class.Color.String(),
		Zone:  p.Class.Zone,
		Value: p.Class.Value,
	}
}
