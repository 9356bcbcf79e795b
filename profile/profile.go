// Package profile extracts elevation profiles along cell edges from DEM
// windows and caches them for the duration of one detection run.
//
// Top and Bottom profiles run left→right along the first and last pixel
// row of the cell; Left and Right profiles run top→bottom along the first
// and last pixel column. A profile has one sample per DEM pixel, so its
// length equals the cell size in pixels.
package profile

import (
	"gonum.org/v1/gonum/floats"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/topology"
)

// Profile is an ordered sequence of elevation samples along an edge.
// Missing samples are dem.NoData.
type Profile []float64

// Span returns the samples in [start, end), clamped to the profile.
func (p Profile) Span(start, end int) Profile {
	start = max(start, 0)
	end = min(end, len(p))
	if end <= start {
		return Profile{}
	}
	return p[start:end]
}

// Valid returns the samples that are not NoData, in order.
func (p Profile) Valid() []float64 {
	out := make([]float64, 0, len(p))
	for _, v := range p {
		if !dem.IsNoData(v) {
			out = append(out, v)
		}
	}
	return out
}

// Max returns the highest valid sample, or false when every sample is NoData.
// Complexity: O(n).
func (p Profile) Max() (float64, bool) {
	v := p.Valid()
	if len(v) == 0 {
		return dem.NoData, false
	}
	return floats.Max(v), true
}

// Min returns the lowest valid sample, or false when every sample is NoData.
func (p Profile) Min() (float64, bool) {
	v := p.Valid()
	if len(v) == 0 {
		return dem.NoData, false
	}
	return floats.Min(v), true
}

// EdgePixels returns the samples along side of cell, read from w. The
// window must contain the cell; samples outside it are NoData.
// Complexity: O(size).
func EdgePixels(w *dem.Window, cell topology.GridCell, side topology.Side) Profile {
	n := cell.Size()
	if n <= 0 {
		return Profile{}
	}
	col0, row0 := cell.X1-w.X, cell.Y1-w.Y
	out := make(Profile, n)
	for i := 0; i < n; i++ {
		switch side {
		case topology.Top:
			out[i] = w.At(col0+i, row0)
		case topology.Bottom:
			out[i] = w.At(col0+i, row0+n-1)
		case topology.Left:
			out[i] = w.At(col0, row0+i)
		case topology.Right:
			out[i] = w.At(col0+n-1, row0+i)
		}
	}
	return out
}

// PixelAt returns the DEM pixel (column, row) of sample i on side of cell.
func PixelAt(cell topology.GridCell, side topology.Side, i int) (x, y int) {
	n := cell.Size()
	switch side {
	case topology.Top:
		return cell.X1 + i, cell.Y1
	case topology.Bottom:
		return cell.X1 + i, cell.Y1 + n - 1
	case topology.Left:
		return cell.X1, cell.Y1 + i
	default:
		return cell.X1 + n - 1, cell.Y1 + i
	}
}
