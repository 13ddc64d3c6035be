// moon-age resolves the astronomical new moon nearest a given instant and
// reports the Moon's age and illumination, geocentrically or for a specific
// observer.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/chrissnell/crescentwatch/pkg/ephem"
)

func main() {
	var timeStr string
	flag.StringVar(&timeStr, "time", "", "UTC instant to report for (RFC3339 format, e.g., 2024-04-09T18:00:00Z)")
	lat := flag.Float64("lat", 0, "Observer latitude for topocentric resolution")
	lon := flag.Float64("lon", 0, "Observer longitude for topocentric resolution")
	topocentric := flag.Bool("topocentric", false, "Resolve the conjunction in the observer's frame (requires -lat/-lon)")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	frame := crescent.FrameGeocentric
	var observer *crescent.GeoCoordinate
	if *topocentric {
		coord := crescent.GeoCoordinate{Lat: *lat, Lon: *lon}
		if !coord.Valid() {
			fmt.Fprintln(os.Stderr, "Error: -lat/-lon out of range")
			os.Exit(1)
		}
		frame = crescent.FrameTopocentric
		observer = &coord
	}

	provider := ephem.NewProvider()
	engine := crescent.NewEngine(provider)

	event := engine.FindConjunction(t, frame, observer)
	if event == nil {
		fmt.Fprintf(os.Stderr, "No conjunction found near %s\n", t.Format(time.RFC3339))
		os.Exit(1)
	}

	age := crescent.MoonAge(event.Time, t)
	illum := provider.MoonIllumination(t)

	fmt.Printf("Moon Age for %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Conjunction:  %s (%s)\n", event.Time.UTC().Format(time.RFC3339), event.FrameTag)
	fmt.Printf("  Phase diff:   %.4f°\n", event.PhaseDeg)
	if event.Fallback {
		fmt.Printf("  Note:         topocentric search found no root; geocentric time reported\n")
	}
	fmt.Printf("  Age:          %.1f hours (%.2f days)\n", age, age/24)
	fmt.Printf("  Illumination: %.2f%%\n", illum*100)
	if age < 0 {
		fmt.Printf("  Direction:    Waning (before conjunction)\n")
	} else {
		fmt.Printf("  Direction:    Waxing\n")
	}
}
