package linker

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/peaks"
	"github.com/threedi/leakdetector/topology"
)

// PeakRef identifies a peak within one detection run: the Index-th peak
// found on the Side edge of Cell.
type PeakRef struct {
	Cell  int
	Side  topology.Side
	Index int
}

// Less orders refs by cell, side, then index.
func (r PeakRef) Less(o PeakRef) bool {
	if r.Cell != o.Cell {
		return r.Cell < o.Cell
	}
	if r.Side != o.Side {
		return r.Side < o.Side
	}
	return r.Index < o.Index
}

func (r PeakRef) String() string {
	return fmt.Sprintf("%d/%s/%d", r.Cell, r.Side, r.Index)
}

// EdgePeaks groups the peaks found on one edge.
type EdgePeaks struct {
	Edge  topology.Edge
	Peaks []peaks.Peak
}

// WindowSource provides the DEM window of a cell for ridge checks.
// *profile.Extractor satisfies it.
type WindowSource interface {
	CachedWindow(cellID int) (*dem.Window, bool)
}

// ObstacleSegment is a chain of linked peaks. It is immutable once built.
//
// Fields:
//   - ID:          1-based, assigned in order of the smallest PeakRef.
//   - Peaks:       contributing peaks, ordered by PeakRef.
//   - Crest:       lowest peak height; the weakest point of the barrier.
//   - Surrounding: highest peak base; the terrain the barrier stands on.
//   - Geometry:    maximal chains through the peak centers, world units.
//   - Length:      total length of Geometry.
//   - Cells:       ids of the cells the segment touches, ascending.
type ObstacleSegment struct {
	ID          int
	Peaks       []PeakRef
	Crest       float64
	Surrounding float64
	Geometry    geom.MultiLineString
	Length      float64
	Cells       []int
}

// Height returns the crest height above the surroundings.
func (s ObstacleSegment) Height() float64 {
	return s.Crest - s.Surrounding
}

// Options configures ConnectMaxima.
//
// Fields:
//   - SearchPrecision:   maximum gap (world units) between linked peaks
//     on facing edges; also the half-width of the ridge search corridor.
//   - MinObstacleHeight: minimum Crest − Surrounding for a reported segment.
//   - MinProminence:     maximum height difference across a cell boundary
//     and maximum ridge dip inside a cell.
type Options struct {
	SearchPrecision   float64
	MinObstacleHeight float64
	MinProminence     float64
}

// Option configures Options.
type Option func(*Options)

// WithSearchPrecision sets Options.SearchPrecision.
func WithSearchPrecision(v float64) Option {
	return func(o *Options) {
		o.SearchPrecision = v
	}
}

// WithMinObstacleHeight sets Options.MinObstacleHeight.
func WithMinObstacleHeight(v float64) Option {
	return func(o *Options) {
		o.MinObstacleHeight = v
	}
}

// WithMinProminence sets Options.MinProminence.
func WithMinProminence(v float64) Option {
	return func(o *Options) {
		o.MinProminence = v
	}
}

// DefaultOptions returns SearchPrecision=1, MinObstacleHeight=0.05 and
// MinProminence=0.1.
func DefaultOptions() Options {
	return Options{
		SearchPrecision:   1,
		MinObstacleHeight: 0.05,
		MinProminence:     0.1,
	}
}
