// crescent-grid computes a world crescent visibility grid for one evening
// and writes it to stdout as JSON or CSV, with progress on stderr.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

func main() {
	dateStr := flag.String("date", "", "Evening to compute, YYYY-MM-DD (default today UTC)")
	step := flag.Float64("step", 2, "Grid spacing in degrees")
	criterionName := flag.String("criterion", "yallop", "Visibility criterion: yallop, odeh, saao, shaukat")
	bestTime := flag.Bool("best-time", false, "Evaluate at the Yallop best time instead of sunset")
	includePolar := flag.Bool("include-polar", false, "Extend the grid to ±85° latitude")
	workers := flag.Int("workers", 0, "Concurrent workers (default GOMAXPROCS)")
	format := flag.String("format", "json", "Output format: json or csv")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	flag.Parse()

	date := time.Now().UTC()
	if *dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			os.Exit(1)
		}
	}

	criterion, err := crescent.ParseCriterion(*criterionName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := crescent.GridOptions{
		StepDeg:      *step,
		Criterion:    criterion,
		IncludePolar: *includePolar,
		BestTime:     *bestTime,
		Workers:      *workers,
	}
	if !*quiet {
		opts.OnProgress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d cells", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	engine := crescent.NewEngine(ephem.NewProvider())
	start := time.Now()
	points, err := engine.GenerateVisibilityGrid(ctx, date.Year(), date.Month(), date.Day(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nGrid computation failed: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "computed %d cells in %v\n", len(points), time.Since(start).Round(time.Millisecond))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(points); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case "csv":
		if err := writeCSV(os.Stdout, points); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q: use json or csv\n", *format)
		os.Exit(1)
	}
}

func writeCSV(f *os.File, points []crescent.VisibilityPoint) error {
	w := csv.NewWriter(f)

	if err := w.Write([]string{"lat", "lon", "zone", "color", "value", "elongation", "arcv", "width_arcmin", "sunset_utc", "lag_min"}); err != nil {
		return err
	}
	for _, p := range points {
		sunset := ""
		if !p.SunsetUTC.IsZero() {
			sunset = p.SunsetUTC.UTC().Format(time.RFC3339)
		}
		rec := []string{
			strconv.FormatFloat(p.Coord.Lat, 'f', 4, 64),
			strconv.FormatFloat(p.Coord.Lon, 'f', 4, 64),
			p.Class.Zone,
			p.Class.Color.String(),
			strconv.FormatFloat(p.Class.Value, 'f', 4, 64),
			strconv.FormatFloat(p.Geometry.ElongationDeg, 'f', 4, 64),
			strconv.FormatFloat(p.Geometry.ARCVDeg, 'f', 4, 64),
			strconv.FormatFloat(p.Geometry.WidthArcmin, 'f', 4, 64),
			sunset,
			strconv.FormatFloat(p.LagMin, 'f', 1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
