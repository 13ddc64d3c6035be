// crescent-survey sweeps every evening of a month for one location and
// prints the per-night crescent classification with summary statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/chrissnell/crescentwatch/pkg/ephem"
	"gonum.org/v1/gonum/stat"
)

func main() {
	lat := flag.Float64("lat", 0, "Observer latitude")
	lon := flag.Float64("lon", 0, "Observer longitude")
	year := flag.Int("year", time.Now().UTC().Year(), "Year to survey")
	month := flag.Int("month", int(time.Now().UTC().Month()), "Month to survey (1-12)")
	criterionName := flag.String("criterion", "yallop", "Visibility criterion: yallop, odeh, saao, shaukat")
	bestTime := flag.Bool("best-time", false, "Evaluate at the Yallop best time instead of sunset")
	flag.Parse()

	coord := crescent.GeoCoordinate{Lat: *lat, Lon: *lon}
	if !coord.Valid() {
		fmt.Fprintln(os.Stderr, "Error: -lat/-lon out of range")
		os.Exit(1)
	}
	if *month < 1 || *month > 12 {
		fmt.Fprintln(os.Stderr, "Error: -month out of range")
		os.Exit(1)
	}
	criterion, err := crescent.ParseCriterion(*criterionName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engine := crescent.NewEngine(ephem.NewProvider())
	opts := crescent.GridOptions{Criterion: criterion, BestTime: *bestTime}

	first := time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	fmt.Printf("Crescent survey for (%.4f, %.4f), %s %d, %s criterion\n\n",
		coord.Lat, coord.Lon, first.Month(), *year, criterion)
	fmt.Printf("%-12s %-6s %-7s %9s %9s %9s %9s\n",
		"date", "zone", "color", "value", "arcv", "elong", "lag_min")

	var arcvs, lags []float64
	bestDay := 0
	bestValue := 0.0
	for day := 1; day <= days; day++ {
		point := engine.EvaluateLocation(coord, *year, time.Month(*month), day, opts)

		if point.SunsetUTC.IsZero() {
			fmt.Printf("%04d-%02d-%02d   no sunset\n", *year, *month, day)
			continue
		}

		fmt.Printf("%04d-%02d-%02d   %-6s %-7s %9.3f %9.3f %9.3f %9.1f\n",
			*year, *month, day,
			point.Class.Zone, point.Class.Color,
			point.Class.Value, point.Geometry.ARCVDeg, point.Geometry.ElongationDeg, point.LagMin)

		arcvs = append(arcvs, point.Geometry.ARCVDeg)
		lags = append(lags, point.LagMin)
		if bestDay == 0 || point.Class.Value > bestValue {
			bestDay, bestValue = day, point.Class.Value
		}
	}

	if len(arcvs) == 0 {
		fmt.Println("\nNo observable evenings this month.")
		return
	}

	fmt.Printf("\nSummary over %d evenings:\n", len(arcvs))
	fmt.Printf("  ARCV:     mean %.3f°, stddev %.3f°\n", stat.Mean(arcvs, nil), stat.StdDev(arcvs, nil))
	fmt.Printf("  Lag:      mean %.1f min, stddev %.1f min\n", stat.Mean(lags, nil), stat.StdDev(lags, nil))
	fmt.Printf("  Best:     %04d-%02d-%02d (value %.3f)\n", *year, *month, bestDay, bestValue)
}
