package linker

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/peaks"
	"github.com/threedi/leakdetector/topology"
)

// node is one peak placed in pixel and world space.
type node struct {
	ref  PeakRef
	edge topology.Edge
	peak peaks.Peak
	// px, py is the plateau midpoint in fractional pixel coordinates,
	// on the centre line of the edge's pixel row or column.
	px, py float64
	// lo, hi bound the plateau along the edge, in world units.
	lo, hi float64
	extent *geom.Bounds
	center geom.Point
}

// along returns the world coordinate of the node centre along its edge.
func (n *node) along() float64 {
	if n.edge.Side.Horizontal() {
		return n.center.X
	}
	return n.center.Y
}

type edgeKey struct {
	cell int
	side topology.Side
}

// index holds all nodes of a run, sorted by PeakRef, and an R-tree over
// their extents.
type index struct {
	nodes  []*node
	byEdge map[edgeKey][]int
	byBox  map[*geom.Bounds]int
	tree   *rtree.Rtree
	geo    dem.GeoTransform
}

func newIndex(edges []EdgePeaks, geo dem.GeoTransform) *index {
	idx := &index{
		byEdge: make(map[edgeKey][]int),
		byBox:  make(map[*geom.Bounds]int),
		tree:   rtree.NewTree(25, 50),
		geo:    geo,
	}
	for _, ep := range edges {
		for i, p := range ep.Peaks {
			idx.nodes = append(idx.nodes, place(ep.Edge, i, p, geo))
		}
	}
	sort.Slice(idx.nodes, func(i, j int) bool { return idx.nodes[i].ref.Less(idx.nodes[j].ref) })
	for i, n := range idx.nodes {
		k := edgeKey{cell: n.ref.Cell, side: n.ref.Side}
		idx.byEdge[k] = append(idx.byEdge[k], i)
		idx.byBox[n.extent] = i
		idx.tree.Insert(n.extent)
	}
	return idx
}

// place computes the pixel and world geometry of peak i on edge.
func place(edge topology.Edge, i int, p peaks.Peak, geo dem.GeoTransform) *node {
	c := edge.Cell
	n := &node{ref: PeakRef{Cell: c.ID, Side: edge.Side, Index: i}, edge: edge, peak: p}

	// Pixel-corner footprint of the plateau: [x0,x1) × [y0,y1).
	var x0, y0, x1, y1 float64
	switch edge.Side {
	case topology.Top, topology.Bottom:
		row := float64(c.Y1)
		if edge.Side == topology.Bottom {
			row = float64(c.Y2 - 1)
		}
		x0, x1 = float64(c.X1+p.Start), float64(c.X1+p.End+1)
		y0, y1 = row, row+1
		n.px, n.py = float64(c.X1)+p.Center(), row+0.5
	default:
		col := float64(c.X1)
		if edge.Side == topology.Right {
			col = float64(c.X2 - 1)
		}
		x0, x1 = col, col+1
		y0, y1 = float64(c.Y1+p.Start), float64(c.Y1+p.End+1)
		n.px, n.py = col+0.5, float64(c.Y1)+p.Center()
	}

	minX, maxY := geo.World(x0, y0)
	maxX, minY := geo.World(x1, y1)
	n.extent = &geom.Bounds{Min: geom.Point{X: minX, Y: minY}, Max: geom.Point{X: maxX, Y: maxY}}
	cx, cy := geo.World(n.px, n.py)
	n.center = geom.Point{X: cx, Y: cy}
	if edge.Side.Horizontal() {
		n.lo, n.hi = minX, maxX
	} else {
		n.lo, n.hi = minY, maxY
	}
	return n
}

// near returns the indices of nodes whose extents come within d of n's
// extent, in ascending order.
func (idx *index) near(n *node, d float64) []int {
	// A small pad keeps touching extents in the result when d is zero.
	pad := d + idx.geo.PixelSize*1e-6
	q := &geom.Bounds{
		Min: geom.Point{X: n.extent.Min.X - pad, Y: n.extent.Min.Y - pad},
		Max: geom.Point{X: n.extent.Max.X + pad, Y: n.extent.Max.Y + pad},
	}
	var out []int
	for _, g := range idx.tree.SearchIntersect(q) {
		b, ok := g.(*geom.Bounds)
		if !ok {
			continue
		}
		if i, ok := idx.byBox[b]; ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// on returns the indices of the nodes on the side edge of cell.
func (idx *index) on(cell int, side topology.Side) []int {
	return idx.byEdge[edgeKey{cell: cell, side: side}]
}
