// Package archive persists completed visibility grid runs so they can be
// listed and replayed through the REST API without recomputation.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound is returned when a run ID has no archived record.
var ErrRunNotFound = errors.New("grid run not found")

// GridRun is one archived visibility grid computation. Points holds the
// msgpack-encoded []crescent.VisibilityPoint blob.
type GridRun struct {
	ID         string    `json:"id" gorm:"primaryKey;column:id"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	Date       string    `json:"date" gorm:"column:date"`
	Criterion  string    `json:"criterion" gorm:"column:criterion"`
	StepDeg    float64   `json:"step_deg" gorm:"column:step_deg"`
	MaxLat     float64   `json:"max_lat" gorm:"column:max_lat"`
	CellCount  int       `json:"cell_count" gorm:"column:cell_count"`
	DurationMs int64     `json:"duration_ms" gorm:"column:duration_ms"`
	Points     []byte    `json:"-" gorm:"column:points"`
}

// TableName customizes the gorm table name for grid runs
func (GridRun) TableName() string {
	return "grid_runs"
}

// RunSummary is a GridRun without the point blob, for listings.
type RunSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Date       string    `json:"date"`
	Criterion  string    `json:"criterion"`
	StepDeg    float64   `json:"step_deg"`
	MaxLat     float64   `json:"max_lat"`
	CellCount  int       `json:"cell_count"`
	DurationMs int64     `json:"duration_ms"`
}

// Store is the interface all archive backends implement.
type Store interface {
	SaveRun(ctx context.Context, run *GridRun) error
	GetRun(ctx context.Context, id string) (*GridRun, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

// NewGridRun builds an archivable record from a completed grid computation.
func NewGridRun(date string, criterion crescent.Criterion, stepDeg, maxLat float64, points []crescent.VisibilityPoint, elapsed time.Duration) (*GridRun, error) {
	blob, err := EncodePoints(points)
	if err != nil {
		return nil, err
	}
	return &GridRun{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Date:       date,
		Criterion:  criterion.String(),
		StepDeg:    stepDeg,
		MaxLat:     maxLat,
		CellCount:  len(points),
		DurationMs: elapsed.Milliseconds(),
		Points:     blob,
	}, nil
}

// Summary strips the point blob for listing responses.
func (r *GridRun) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Date:       r.Date,
		Criterion:  r.Criterion,
		StepDeg:    r.StepDeg,
		MaxLat:     r.MaxLat,
		CellCount:  r.CellCount,
		DurationMs: r.DurationMs,
	}
}

// EncodePoints serializes grid points with msgpack.
func EncodePoints(points []crescent.VisibilityPoint) ([]byte, error) {
	return msgpack.Marshal(points)
}

// DecodePoints deserializes a msgpack point blob.
func DecodePoints(blob []byte) ([]crescent.VisibilityPoint, error) {
	var points []crescent.VisibilityPoint
	if err := msgpack.Unmarshal(blob, &points); err != nil {
		return nil, err
	}
	return points, nil
}
