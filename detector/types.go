package detector

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/threedi/leakdetector/linker"
)

// ErrNilSource is returned by New when the grid administration or the DEM
// source is missing.
var ErrNilSource = errors.New("detector: admin and source must not be nil")

// Segment is an obstacle segment together with the flow lines it crosses.
type Segment struct {
	linker.ObstacleSegment
	// FlowLines lists, ascending, the evaluated flow lines whose
	// centre-to-centre line the segment geometry intersects.
	FlowLines []int
}

// ExchangeLevel is the effective crest elevation gating one flow line.
//
// Fields:
//   - FlowLine:   flow line id.
//   - Level:      crest of the highest crossing segment, or the highest
//     valid boundary sample when no segment crosses; NaN when the shared
//     boundary holds no valid sample.
//   - Obstructed: whether a segment crosses the flow line.
//   - Segment:    id of the segment that sets Level, 0 when unobstructed.
type ExchangeLevel struct {
	FlowLine   int
	Level      float64
	Obstructed bool
	Segment    int
}

// Result is the outcome of one detection run.
type Result struct {
	RunID          uuid.UUID
	Segments       []Segment
	ExchangeLevels []ExchangeLevel
	// Skipped holds requested cell ids that did not resolve.
	Skipped []int
	// SkippedFlowLines holds requested flow line ids that did not resolve.
	SkippedFlowLines []int
}

// Summary counts the parts of a Result.
type Summary struct {
	Segments     int
	FlowLines    int
	Obstructed   int
	NoData       int
	SkippedCells int
	SkippedLines int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d segments, %d flow lines (%d obstructed, %d without data), %d cells and %d flow lines skipped",
		s.Segments, s.FlowLines, s.Obstructed, s.NoData, s.SkippedCells, s.SkippedLines)
}

// Summary returns the counts of r.
func (r Result) Summary() Summary {
	s := Summary{
		Segments:     len(r.Segments),
		FlowLines:    len(r.ExchangeLevels),
		SkippedCells: len(r.Skipped),
		SkippedLines: len(r.SkippedFlowLines),
	}
	for _, e := range r.ExchangeLevels {
		if e.Obstructed {
			s.Obstructed++
		}
		if math.IsNaN(e.Level) {
			s.NoData++
		}
	}
	return s
}

// Level returns the exchange level of flow line id.
func (r Result) Level(id int) (ExchangeLevel, bool) {
	for _, e := range r.ExchangeLevels {
		if e.FlowLine == id {
			return e, true
		}
	}
	return ExchangeLevel{}, false
}
