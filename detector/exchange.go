package detector

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ctessum/geom"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/linker"
	"github.com/threedi/leakdetector/profile"
	"github.com/threedi/leakdetector/topology"
)

// exchangeLevels computes one ExchangeLevel per flow line that resolves,
// in the order of lines, and the ids of the flow lines each segment
// crosses, keyed by segment id.
func (d *Detector) exchangeLevels(ex *profile.Extractor, segs []linker.ObstacleSegment, lines []topology.FlowLine) ([]ExchangeLevel, map[int][]int) {
	geo := d.source.GeoTransform()
	crossed := make(map[int][]int)
	var out []ExchangeLevel
	for _, fl := range lines {
		a, b, err := d.link(geo, fl)
		if err != nil {
			diagf("flow line %d: %v", fl.ID, err)
			continue
		}
		lvl := ExchangeLevel{FlowLine: fl.ID}
		for _, s := range segs {
			if !crosses(s.Geometry, a, b) {
				continue
			}
			crossed[s.ID] = append(crossed[s.ID], fl.ID)
			if !lvl.Obstructed || s.Crest > lvl.Level {
				lvl.Level, lvl.Segment, lvl.Obstructed = s.Crest, s.ID, true
			}
		}
		if !lvl.Obstructed {
			lvl.Level = d.boundaryLevel(ex, fl)
		}
		out = append(out, lvl)
	}
	return out, crossed
}

// link returns the world-space line from the centre of fl.From to the
// centre of fl.To.
func (d *Detector) link(geo dem.GeoTransform, fl topology.FlowLine) (geom.Point, geom.Point, error) {
	from, err := d.admin.Cell(fl.From)
	if err != nil {
		return geom.Point{}, geom.Point{}, err
	}
	to, err := d.admin.Cell(fl.To)
	if err != nil {
		return geom.Point{}, geom.Point{}, err
	}
	return center(geo, from), center(geo, to), nil
}

func center(geo dem.GeoTransform, c topology.GridCell) geom.Point {
	x, y := geo.World(c.Center())
	return geom.Point{X: x, Y: y}
}

// boundaryLevel returns the highest valid sample on either side of the
// boundary shared by fl.From and fl.To, or NoData.
func (d *Detector) boundaryLevel(ex *profile.Extractor, fl topology.FlowLine) float64 {
	fromSpan, toSpan, err := topology.SharedBoundary(d.admin, fl)
	if err != nil {
		diagf("flow line %d: %v", fl.ID, err)
		return dem.NoData
	}
	var samples []float64
	if p, ok := ex.Cached(fl.From, fl.Side); ok {
		samples = append(samples, p.Span(fromSpan.Start, fromSpan.End).Valid()...)
	} else {
		diagf("flow line %d: no profile for cell %d %s", fl.ID, fl.From, fl.Side)
	}
	if p, ok := ex.Cached(fl.To, fl.Side.Opposite()); ok {
		samples = append(samples, p.Span(toSpan.Start, toSpan.End).Valid()...)
	} else {
		diagf("flow line %d: no profile for cell %d %s", fl.ID, fl.To, fl.Side.Opposite())
	}
	if len(samples) == 0 {
		return dem.NoData
	}
	return floats.Max(samples)
}

// crosses reports whether any part of ml intersects the segment ab.
func crosses(ml geom.MultiLineString, a, b geom.Point) bool {
	if len(ml) == 0 {
		return false
	}
	bb := ml.Bounds()
	if math.Max(a.X, b.X) < bb.Min.X || math.Min(a.X, b.X) > bb.Max.X ||
		math.Max(a.Y, b.Y) < bb.Min.Y || math.Min(a.Y, b.Y) > bb.Max.Y {
		return false
	}
	for _, l := range ml {
		for i := 1; i < len(l); i++ {
			if intersects(l[i-1], l[i], a, b) {
				return true
			}
		}
	}
	return false
}

// intersects reports whether the closed segments p1p2 and q1q2 share a
// point.
func intersects(p1, p2, q1, q2 geom.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)
	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && within(p1, p2, q1):
		return true
	case o2 == 0 && within(p1, p2, q2):
		return true
	case o3 == 0 && within(q1, q2, p1):
		return true
	case o4 == 0 && within(q1, q2, p2):
		return true
	}
	return false
}

// orientation returns the sign of the turn p→q→r.
func orientation(p, q, r geom.Point) int {
	v := (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// within reports whether r, collinear with pq, lies on the segment pq.
func within(p, q, r geom.Point) bool {
	return math.Min(p.X, q.X) <= r.X && r.X <= math.Max(p.X, q.X) &&
		math.Min(p.Y, q.Y) <= r.Y && r.Y <= math.Max(p.Y, q.Y)
}
