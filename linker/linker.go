package linker

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ctessum/geom"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/topology"
)

// ConnectMaxima merges the peaks of all edges into obstacle segments.
//
// Steps:
//  1. Place every peak in pixel and world space and index the extents.
//  2. For each peak, in PeakRef order, link it to the best candidate on
//     the facing edge of each neighbor and, when windows is non-nil, to the
//     best ridge-connected candidate on each other side of its own cell.
//     A link is made only when each peak is the other's best candidate.
//  3. Group peaks by disjoint-set root; keep groups of two or more peaks
//     whose Crest − Surrounding ≥ MinObstacleHeight.
//  4. Number the segments in order of their smallest PeakRef.
//
// The result is deterministic for identical input.
func ConnectMaxima(edges []EdgePeaks, geo dem.GeoTransform, windows WindowSource, opts ...Option) []ObstacleSegment {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	idx := newIndex(edges, geo)
	if len(idx.nodes) == 0 {
		return nil
	}

	sets := newDSU(len(idx.nodes))
	// links holds the unions that merged two sets: a spanning forest of
	// each component, used to draw the segment geometry.
	var links [][2]int
	link := func(a, b int) {
		if sets.union(a, b) {
			links = append(links, [2]int{a, b})
		}
	}

	radius := 0
	if geo.PixelSize > 0 {
		radius = int(o.SearchPrecision / geo.PixelSize)
	}
	for a, n := range idx.nodes {
		for _, nb := range n.edge.Neighbors {
			b, ok := bestAcross(idx, a, nb.CellID, o)
			if !ok {
				continue
			}
			if back, ok := bestAcross(idx, b, n.ref.Cell, o); ok && back == a {
				link(a, b)
			}
		}
		if windows == nil {
			continue
		}
		w, ok := windows.CachedWindow(n.ref.Cell)
		if !ok {
			continue
		}
		for _, s := range topology.Sides {
			if s == n.ref.Side {
				continue
			}
			b, ok := bestWithin(idx, w, a, s, radius, o)
			if !ok {
				continue
			}
			if back, ok := bestWithin(idx, w, b, n.ref.Side, radius, o); ok && back == a {
				link(a, b)
			}
		}
	}

	return assemble(idx, sets, links, o)
}

// candidate tracks the best link target seen so far.
type candidate struct {
	index  int
	offset float64
	dh     float64
	found  bool
}

// consider replaces the current best when (offset, dh) is strictly
// smaller. Candidates are visited in PeakRef order, so the lowest ref
// wins remaining ties.
func (c *candidate) consider(i int, offset, dh float64) {
	if !c.found || offset < c.offset || (offset == c.offset && dh < c.dh) {
		*c = candidate{index: i, offset: offset, dh: dh, found: true}
	}
}

// bestAcross finds the best peak on the facing edge of cell for node a.
func bestAcross(idx *index, a int, cell int, o Options) (int, bool) {
	n := idx.nodes[a]
	facing := n.ref.Side.Opposite()
	var best candidate
	for _, b := range idx.near(n, o.SearchPrecision) {
		m := idx.nodes[b]
		if m.ref.Cell != cell || m.ref.Side != facing {
			continue
		}
		if gap(n, m) > o.SearchPrecision {
			continue
		}
		dh := math.Abs(n.peak.Height - m.peak.Height)
		if dh > o.MinProminence {
			continue
		}
		best.consider(b, math.Abs(n.along()-m.along()), dh)
	}
	return best.index, best.found
}

// gap returns the distance between the along-edge extents of two nodes on
// parallel edges; zero or negative means they overlap.
func gap(n, m *node) float64 {
	return math.Max(n.lo, m.lo) - math.Min(n.hi, m.hi)
}

// bestWithin finds the best ridge-connected peak on side of node a's cell.
func bestWithin(idx *index, w *dem.Window, a int, side topology.Side, radius int, o Options) (int, bool) {
	n := idx.nodes[a]
	var best candidate
	for _, b := range idx.on(n.ref.Cell, side) {
		m := idx.nodes[b]
		floor := math.Min(n.peak.Height, m.peak.Height) - o.MinProminence
		if !ridge(w, n, m, radius, floor) {
			continue
		}
		offset := math.Hypot(n.center.X-m.center.X, n.center.Y-m.center.Y)
		best.consider(b, offset, math.Abs(n.peak.Height-m.peak.Height))
	}
	return best.index, best.found
}

// ridge reports whether the straight line between the centres of n and m
// stays at or above floor. Each step takes the highest valid sample within
// radius pixels of the line; a step with no valid sample breaks the ridge.
func ridge(w *dem.Window, n, m *node, radius int, floor float64) bool {
	dx, dy := m.px-n.px, m.py-n.py
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		col := int(math.Floor(n.px+t*dx)) - w.X
		row := int(math.Floor(n.py+t*dy)) - w.Y
		v := highest(w, col, row, radius)
		if dem.IsNoData(v) || v < floor {
			return false
		}
	}
	return true
}

// highest returns the largest valid sample in the (2r+1)² block around
// (col,row), or NoData.
func highest(w *dem.Window, col, row, r int) float64 {
	best := dem.NoData
	for y := row - r; y <= row+r; y++ {
		for x := col - r; x <= col+r; x++ {
			v := w.At(x, y)
			if dem.IsNoData(v) {
				continue
			}
			if dem.IsNoData(best) || v > best {
				best = v
			}
		}
	}
	return best
}

// assemble turns disjoint-set components into segments.
func assemble(idx *index, sets *dsu, links [][2]int, o Options) []ObstacleSegment {
	members := make(map[int][]int)
	var roots []int
	for i := range idx.nodes {
		r := sets.find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}
	adj := make(map[int][]int)
	for _, l := range links {
		adj[l[0]] = append(adj[l[0]], l[1])
		adj[l[1]] = append(adj[l[1]], l[0])
	}
	for k := range adj {
		sort.Ints(adj[k])
	}

	var out []ObstacleSegment
	for _, r := range roots {
		ms := members[r]
		if len(ms) < 2 {
			continue
		}
		seg := ObstacleSegment{Crest: math.Inf(1), Surrounding: math.Inf(-1)}
		var cells []int
		for _, i := range ms {
			n := idx.nodes[i]
			seg.Peaks = append(seg.Peaks, n.ref)
			seg.Crest = math.Min(seg.Crest, n.peak.Height)
			seg.Surrounding = math.Max(seg.Surrounding, n.peak.Base)
			cells = append(cells, n.ref.Cell)
		}
		if seg.Crest-seg.Surrounding < o.MinObstacleHeight {
			continue
		}
		seg.Cells = uniqueSorted(cells)
		seg.Geometry = chains(idx, ms, adj)
		seg.Length = length(seg.Geometry)
		out = append(out, seg)
	}
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}

// chains decomposes a spanning tree into maximal paths between nodes whose
// degree is not two.
func chains(idx *index, members []int, adj map[int][]int) geom.MultiLineString {
	type pair [2]int
	key := func(a, b int) pair {
		if a > b {
			a, b = b, a
		}
		return pair{a, b}
	}
	used := make(map[pair]bool)
	walk := func(start, next int) geom.LineString {
		line := geom.LineString{idx.nodes[start].center}
		prev, cur := start, next
		for {
			used[key(prev, cur)] = true
			line = append(line, idx.nodes[cur].center)
			if len(adj[cur]) != 2 {
				return line
			}
			nxt := adj[cur][0]
			if nxt == prev {
				nxt = adj[cur][1]
			}
			if used[key(cur, nxt)] {
				return line
			}
			prev, cur = cur, nxt
		}
	}

	var out geom.MultiLineString
	for _, s := range members {
		if len(adj[s]) == 2 {
			continue
		}
		for _, nb := range adj[s] {
			if used[key(s, nb)] {
				continue
			}
			out = append(out, walk(s, nb))
		}
	}
	return out
}

// length returns the total length of all lines.
func length(ml geom.MultiLineString) float64 {
	parts := make([]float64, 0, len(ml))
	for _, l := range ml {
		var d float64
		for i := 1; i < len(l); i++ {
			d += math.Hypot(l[i].X-l[i-1].X, l[i].Y-l[i-1].Y)
		}
		parts = append(parts, d)
	}
	return floats.Sum(parts)
}

func uniqueSorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
