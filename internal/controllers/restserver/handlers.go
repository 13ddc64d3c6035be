package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/crescentwatch/internal/archive"
	"github.com/chrissnell/crescentwatch/internal/constants"
	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/chrissnell/crescentwatch/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// parseDate reads the observation date from either date=YYYY-MM-DD or the
// y/m/d triple, bounded to the ephemeris validity range.
func parseDate(req *http.Request) (int, time.Month, int, error) {
	q := req.URL.Query()
	if d := q.Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
		}
		if t.Year() < 1900 || t.Year() > 2100 {
			return 0, 0, 0, fmt.Errorf("year %d out of range [1900, 2100]", t.Year())
		}
		return t.Year(), t.Month(), t.Day(), nil
	}

	year, err := strconv.Atoi(q.Get("y"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("missing or invalid year")
	}
	month, err := strconv.Atoi(q.Get("m"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("missing or invalid month")
	}
	day, err := strconv.Atoi(q.Get("d"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("missing or invalid day")
	}
	if year < 1900 || year > 2100 {
		return 0, 0, 0, fmt.Errorf("year %d out of range [1900, 2100]", year)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range [1, 12]", month)
	}
	if day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("day %d out of range [1, 31]", day)
	}
	return year, time.Month(month), day, nil
}

func parseFloat(q string, fallback float64) float64 {
	if q == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return fallback
	}
	return v
}

// GetVisibility computes a world visibility grid and streams it as NDJSON:
// status lines with a progress percentage, then a final line carrying the
// full result. A mid-stream failure is reported as an error line.
func (h *Handlers) GetVisibility(w http.ResponseWriter, req *http.Request) {
	year, month, day, err := parseDate(req)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	q := req.URL.Query()
	defaults := h.controller.engineDefaults

	stepDeg := parseFloat(q.Get("step_deg"), defaults.StepDeg)
	if stepDeg <= 0 {
		stepDeg = 2
	}
	if stepDeg < 0.5 || stepDeg > 10 {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("step_deg %v out of range [0.5, 10]", stepDeg))
		return
	}

	criterionName := q.Get("criterion")
	if criterionName == "" {
		criterionName = defaults.Criterion
	}
	if criterionName == "" {
		criterionName = "yallop"
	}
	criterion, err := crescent.ParseCriterion(criterionName)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	evalTime := q.Get("eval_time")
	switch evalTime {
	case "":
		evalTime = "sunset"
		if defaults.BestTime {
			evalTime = "best"
		}
	case "sunset", "best":
	default:
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("eval_time %q, want sunset or best", evalTime))
		return
	}

	includePolar := q.Get("include_polar") == "true"
	maxLat := 60.0
	if includePolar {
		maxLat = 85.0
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	writeLine := func(v any) {
		enc.Encode(v)
		if flusher != nil {
			flusher.Flush()
		}
	}

	writeLine(progressLine{Status: "Initializing grid...", Progress: 5})

	progressCh := make(chan [2]int, 16)
	opts := crescent.GridOptions{
		StepDeg:      stepDeg,
		MaxLat:       maxLat,
		Criterion:    criterion,
		IncludePolar: includePolar,
		BestTime:     evalTime == "best",
		Workers:      defaults.Workers,
		OnProgress: func(done, total int) {
			select {
			case progressCh <- [2]int{done, total}:
			default:
			}
		},
	}

	type gridResult struct {
		points []crescent.VisibilityPoint
		err    error
	}
	resultCh := make(chan gridResult, 1)
	start := time.Now()
	go func() {
		points, err := h.controller.engine.GenerateVisibilityGrid(req.Context(), year, month, day, opts)
		resultCh <- gridResult{points, err}
	}()

	var points []crescent.VisibilityPoint
stream:
	for {
		select {
		case p := <-progressCh:
			done, total := p[0], p[1]
			if total == 0 {
				continue
			}
			// Map cell completion onto the 10..95 band; the endpoints are
			// reserved for setup and packaging.
			pct := 10 + done*85/total
			if pct > 95 {
				pct = 95
			}
			writeLine(progressLine{Status: fmt.Sprintf("Computing visibility: %d/%d cells", done, total), Progress: pct})
		case r := <-resultCh:
			if r.err != nil {
				h.controller.metrics.ObserveGridRun(criterion.String(), 0, time.Since(start), r.err)
				writeLine(errorLine{Error: r.err.Error()})
				return
			}
			points = r.points
			break stream
		}
	}

	elapsed := time.Since(start)
	h.controller.metrics.ObserveGridRun(criterion.String(), len(points), elapsed, nil)

	writeLine(progressLine{Status: "Packaging results...", Progress: 95})

	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	meta := VisibilityMeta{
		Date:       date,
		EvalTime:   evalTime,
		Criterion:  criterion.String(),
		StepDeg:    stepDeg,
		MaxLat:     maxLat,
		CalcTimeMs: elapsed.Milliseconds(),
	}

	if h.controller.store != nil {
		run, err := archive.NewGridRun(date, criterion, stepDeg, maxLat, points, elapsed)
		if err == nil {
			err = h.controller.store.SaveRun(req.Context(), run)
		}
		if err != nil {
			h.controller.logger.Warnf("could not archive grid run: %v", err)
		} else {
			meta.RunID = run.ID
		}
	}

	outs := make([]VisibilityPointOut, len(points))
	for i, p := range points {
		outs[i] = pointOut(p)
	}

	writeLine(resultLine{Progress: 100, Result: &VisibilityResult{Meta: meta, Points: outs}})
}

// GetSimulation computes the sunset trajectory for one location.
func (h *Handlers) GetSimulation(w http.ResponseWriter, req *http.Request) {
	year, month, day, err := parseDate(req)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	q := req.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "lat and lon are required")
		return
	}
	coord := crescent.GeoCoordinate{
		Lat: parseFloat(q.Get("lat"), 0),
		Lon: parseFloat(q.Get("lon"), 0),
	}
	if !coord.Valid() {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "lat/lon out of range")
		return
	}

	start := time.Now()
	traj, err := h.controller.engine.SimulationTrajectory(coord, year, month, day, crescent.TrajectoryOptions{})
	if err != nil {
		if errors.Is(err, crescent.ErrNoSunset) {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "No sunset found (Polar?)")
			return
		}
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	h.controller.metrics.ObserveTrajectory()

	resp := SimulationResponse{
		Meta: SimulationMeta{
			Lat:        coord.Lat,
			Lon:        coord.Lon,
			SunsetISO:  traj.Sunset.UTC().Format(time.RFC3339),
			CalcTimeMs: time.Since(start).Milliseconds(),
		},
		Conjunction: traj.Conjunction,
		Trajectory:  traj.Frames,
	}
	h.formatter.WriteResponse(w, req, resp, nil)
}

// GetConjunction resolves the astronomical new moon nearest the given date,
// geocentrically by default or topocentrically when lat/lon are supplied
// with frame=topocentric.
func (h *Handlers) GetConjunction(w http.ResponseWriter, req *http.Request) {
	year, month, day, err := parseDate(req)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	q := req.URL.Query()
	frame := crescent.FrameGeocentric
	var observer *crescent.GeoCoordinate
	switch q.Get("frame") {
	case "", "geocentric":
	case "topocentric":
		frame = crescent.FrameTopocentric
		if q.Get("lat") == "" || q.Get("lon") == "" {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "topocentric frame requires lat and lon")
			return
		}
		coord := crescent.GeoCoordinate{
			Lat: parseFloat(q.Get("lat"), 0),
			Lon: parseFloat(q.Get("lon"), 0),
		}
		if !coord.Valid() {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "lat/lon out of range")
			return
		}
		observer = &coord
	default:
		h.formatter.WriteError(w, req, http.StatusBadRequest, "frame must be geocentric or topocentric")
		return
	}

	ref := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	event := h.controller.engine.FindConjunction(ref, frame, observer)
	if event == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "no conjunction found near the requested date")
		return
	}
	h.controller.metrics.ObserveConjunction(event.FrameTag, event.Fallback)

	h.formatter.WriteResponse(w, req, event, nil)
}

// ListRuns lists archived grid runs, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if l := req.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	runs, err := h.controller.store.ListRuns(req.Context(), limit)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []archive.RunSummary{}
	}
	h.formatter.WriteResponse(w, req, runs, nil)
}

// GetRun replays one archived grid run, points included.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	run, err := h.controller.store.GetRun(req.Context(), id)
	if err != nil {
		if errors.Is(err, archive.ErrRunNotFound) {
			h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
			return
		}
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	points, err := archive.DecodePoints(run.Points)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, fmt.Sprintf("corrupt point blob: %v", err))
		return
	}

	outs := make([]VisibilityPointOut, len(points))
	for i, p := range points {
		outs[i] = pointOut(p)
	}

	resp := struct {
		Meta   archive.RunSummary   `json:"meta"`
		Points []VisibilityPointOut `json:"points"`
	}{Meta: run.Summary(), Points: outs}
	h.formatter.WriteResponse(w, req, resp, nil)
}

// GetHealth reports liveness and the build version.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	}, nil)
}
