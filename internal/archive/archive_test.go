package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/crescent"
)

func samplePoints() []crescent.VisibilityPoint {
	sunset := time.Date(2024, 4, 9, 18, 5, 0, 0, time.UTC)
	return []crescent.VisibilityPoint{
		{
			Coord: crescent.GeoCoordinate{Lat: 21.4225, Lon: 39.8262},
			Geometry: crescent.CrescentGeometry{
				ElongationDeg: 12.3,
				ARCVDeg:       8.1,
				WidthArcmin:   0.41,
				MoonDistKm:    384400,
			},
			Class:     crescent.Yallop.Evaluate(crescent.Observation{Geometry: crescent.CrescentGeometry{ElongationDeg: 12.3, ARCVDeg: 8.1, WidthArcmin: 0.41}, MoonAltDeg: 9.0}),
			SunsetUTC: sunset,
			LagMin:    52,
		},
		{
			Coord:  crescent.GeoCoordinate{Lat: -34, Lon: 151},
			Class:  crescent.Odeh.Worst(),
			LagMin: -3,
		},
	}
}

func TestPointCodecRoundTrip(t *testing.T) {
	points := samplePoints()

	blob, err := EncodePoints(points)
	if err != nil {
		t.Fatalf("EncodePoints: %v", err)
	}
	decoded, err := DecodePoints(blob)
	if err != nil {
		t.Fatalf("DecodePoints: %v", err)
	}

	if len(decoded) != len(points) {
		t.Fatalf("got %d points, want %d", len(decoded), len(points))
	}
	if decoded[0].Coord != points[0].Coord {
		t.Errorf("coord = %+v, want %+v", decoded[0].Coord, points[0].Coord)
	}
	if decoded[0].Geometry != points[0].Geometry {
		t.Errorf("geometry = %+v, want %+v", decoded[0].Geometry, points[0].Geometry)
	}
	if !decoded[0].SunsetUTC.Equal(points[0].SunsetUTC) {
		t.Errorf("sunset = %v, want %v", decoded[0].SunsetUTC, points[0].SunsetUTC)
	}
	if decoded[1].Class.Color != crescent.Red {
		t.Errorf("worst color = %v, want red", decoded[1].Class.Color)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	run, err := NewGridRun("2024-04-09", crescent.Odeh, 2, 60, samplePoints(), 1500*time.Millisecond)
	if err != nil {
		t.Fatalf("NewGridRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run ID not assigned")
	}
	if run.CellCount != 2 || run.DurationMs != 1500 {
		t.Fatalf("run metadata = %+v", run.Summary())
	}

	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched.Criterion != "odeh" || fetched.StepDeg != 2 || fetched.MaxLat != 60 {
		t.Errorf("fetched run = %+v", fetched.Summary())
	}

	points, err := DecodePoints(fetched.Points)
	if err != nil {
		t.Fatalf("DecodePoints on fetched blob: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
}

func TestSQLiteStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	dates := []string{"2024-04-09", "2024-05-08", "2024-06-06"}
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, d := range dates {
		run, err := NewGridRun(d, crescent.Yallop, 5, 60, nil, time.Second)
		if err != nil {
			t.Fatalf("NewGridRun: %v", err)
		}
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Date != "2024-06-06" || runs[1].Date != "2024-05-08" {
		t.Errorf("runs not newest first: %v, %v", runs[0].Date, runs[1].Date)
	}
}

func TestSQLiteStoreGetRunNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	if _, err := store.GetRun(ctx, "no-such-id"); err != ErrRunNotFound {
		t.Fatalf("GetRun error = %v, want ErrRunNotFound", err)
	}
}
