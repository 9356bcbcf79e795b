package linker_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/linker"
	"github.com/threedi/leakdetector/peaks"
	"github.com/threedi/leakdetector/profile"
	"github.com/threedi/leakdetector/topology"
)

// Two 10×10 cells side by side on a 20×10 raster with unit pixels:
// X = [0,10)×[0,10), Y = [10,20)×[0,10).
var (
	cellX = topology.GridCell{ID: 1, X1: 0, Y1: 0, X2: 10, Y2: 10}
	cellY = topology.GridCell{ID: 2, X1: 10, Y1: 0, X2: 20, Y2: 10}
	unit  = dem.GeoTransform{PixelSize: 1}
)

// windows serves cell windows read from one raster.
type windows map[int]*dem.Window

func (w windows) CachedWindow(id int) (*dem.Window, bool) {
	win, ok := w[id]
	return win, ok
}

type pixel struct {
	x, y int
	z    float64
}

// scene builds a 20×10 raster with the given raised pixels and reads the
// windows of both cells.
func scene(t *testing.T, raised []pixel) windows {
	t.Helper()
	data := make([]float64, 20*10)
	for _, p := range raised {
		data[p.y*20+p.x] = p.z
	}
	g, err := dem.NewGrid(20, 10, data)
	require.NoError(t, err)
	r, err := g.Open()
	require.NoError(t, err)
	ws := windows{}
	for _, c := range []topology.GridCell{cellX, cellY} {
		w, err := r.ReadWindow(c.X1, c.Y1, c.Size(), c.Size())
		require.NoError(t, err)
		ws[c.ID] = w
	}
	return ws
}

func edge(c topology.GridCell, s topology.Side, nbs ...int) topology.Edge {
	e := topology.Edge{Cell: c, Side: s}
	for _, id := range nbs {
		e.Neighbors = append(e.Neighbors, topology.Neighbor{CellID: id, Start: 0, End: c.Size()})
	}
	return e
}

func detect(ws windows, e topology.Edge, prominence float64) linker.EdgePeaks {
	p := profile.EdgePixels(ws[e.Cell.ID], e.Cell, e.Side)
	return linker.EdgePeaks{Edge: e, Peaks: peaks.FindMaxima(p, peaks.Options{MinProminence: prominence})}
}

// wallThroughCorner raises a wall along row 5 of X and then diagonally
// through Y up to its top edge at column 15.
func wallThroughCorner() []pixel {
	var raised []pixel
	for x := 0; x < 10; x++ {
		raised = append(raised, pixel{x, 5, 3})
	}
	for k := 0; k <= 5; k++ {
		raised = append(raised, pixel{10 + k, 5 - k, 3})
	}
	return raised
}

// TestConnectMaxima_Transitive links A (X right) to B (Y left) across the
// boundary and B to C (Y top) inside Y. A and C are never compared but must
// end up in one segment.
func TestConnectMaxima_Transitive(t *testing.T) {
	ws := scene(t, wallThroughCorner())
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
		detect(ws, edge(cellY, topology.Top), 1),
	}
	for _, ep := range edges {
		require.Len(t, ep.Peaks, 1, "edge %s of cell %d", ep.Edge.Side, ep.Edge.Cell.ID)
	}

	segs := linker.ConnectMaxima(edges, unit, ws,
		linker.WithSearchPrecision(1), linker.WithMinProminence(1), linker.WithMinObstacleHeight(1))
	require.Len(t, segs, 1)
	s := segs[0]
	assert.Equal(t, 1, s.ID)
	assert.Equal(t, []linker.PeakRef{
		{Cell: 1, Side: topology.Right, Index: 0},
		{Cell: 2, Side: topology.Top, Index: 0},
		{Cell: 2, Side: topology.Left, Index: 0},
	}, s.Peaks)
	assert.Equal(t, 3.0, s.Crest)
	assert.Equal(t, 0.0, s.Surrounding)
	assert.Equal(t, 3.0, s.Height())
	assert.Equal(t, []int{1, 2}, s.Cells)

	require.Len(t, s.Geometry, 1)
	line := s.Geometry[0]
	require.Len(t, line, 3)
	assert.InDelta(t, 9.5, line[0].X, 1e-9)
	assert.InDelta(t, -5.5, line[0].Y, 1e-9)
	assert.InDelta(t, 10.5, line[1].X, 1e-9)
	assert.InDelta(t, 15.5, line[2].X, 1e-9)
	assert.InDelta(t, -0.5, line[2].Y, 1e-9)
	assert.InDelta(t, 1+5*math.Sqrt2, s.Length, 1e-9)
}

func TestConnectMaxima_HeightFilter(t *testing.T) {
	ws := scene(t, wallThroughCorner())
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}

	kept := linker.ConnectMaxima(edges, unit, ws,
		linker.WithMinProminence(1), linker.WithMinObstacleHeight(3))
	assert.Len(t, kept, 1, "crest exactly MinObstacleHeight above surroundings is kept")

	dropped := linker.ConnectMaxima(edges, unit, ws,
		linker.WithMinProminence(1), linker.WithMinObstacleHeight(3.5))
	assert.Empty(t, dropped)
}

// TestConnectMaxima_TieBreak offers A two equally offset candidates on
// Y's left edge; the one with the smaller height difference wins and the
// other stays unlinked.
func TestConnectMaxima_TieBreak(t *testing.T) {
	ws := scene(t, []pixel{
		{9, 5, 3},
		{10, 4, 3.5},
		{10, 6, 3.2},
	})
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}
	require.Len(t, edges[1].Peaks, 2)

	segs := linker.ConnectMaxima(edges, unit, nil,
		linker.WithSearchPrecision(1), linker.WithMinProminence(1), linker.WithMinObstacleHeight(0))
	require.Len(t, segs, 1)
	assert.Equal(t, []linker.PeakRef{
		{Cell: 1, Side: topology.Right, Index: 0},
		{Cell: 2, Side: topology.Left, Index: 1},
	}, segs[0].Peaks)
	assert.InDelta(t, 3.0, segs[0].Crest, 1e-12)
}

func TestConnectMaxima_SmallestOffsetWins(t *testing.T) {
	ws := scene(t, []pixel{
		{9, 5, 3},
		{10, 3, 3},
		{10, 6, 3},
	})
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}
	segs := linker.ConnectMaxima(edges, unit, nil,
		linker.WithSearchPrecision(2), linker.WithMinProminence(1), linker.WithMinObstacleHeight(0))
	require.Len(t, segs, 1)
	assert.Equal(t, linker.PeakRef{Cell: 2, Side: topology.Left, Index: 1}, segs[0].Peaks[1])
}

func TestConnectMaxima_RejectsIncompatibleAndDistantPeaks(t *testing.T) {
	// Heights differ by more than the prominence.
	ws := scene(t, []pixel{{9, 5, 3}, {10, 5, 5}})
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}
	assert.Empty(t, linker.ConnectMaxima(edges, unit, nil, linker.WithMinProminence(1), linker.WithMinObstacleHeight(0)))

	// Positions three pixels apart with a one-unit search precision.
	ws = scene(t, []pixel{{9, 2, 3}, {10, 6, 3}})
	edges = []linker.EdgePeaks{
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}
	assert.Empty(t, linker.ConnectMaxima(edges, unit, nil,
		linker.WithSearchPrecision(1), linker.WithMinProminence(1), linker.WithMinObstacleHeight(0)))
}

// TestConnectMaxima_RidgeGap runs a wall straight across Y from its left
// to its right edge; a three-pixel breach stops the intra-cell link.
func TestConnectMaxima_RidgeGap(t *testing.T) {
	wall := func(breach bool) []pixel {
		var raised []pixel
		for x := 10; x < 20; x++ {
			if breach && x >= 14 && x <= 16 {
				continue
			}
			raised = append(raised, pixel{x, 5, 3})
		}
		return raised
	}
	opts := []linker.Option{linker.WithSearchPrecision(1), linker.WithMinProminence(1), linker.WithMinObstacleHeight(0)}

	ws := scene(t, wall(false))
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellY, topology.Left), 1),
		detect(ws, edge(cellY, topology.Right), 1),
	}
	require.Len(t, linker.ConnectMaxima(edges, unit, ws, opts...), 1)

	ws = scene(t, wall(true))
	edges = []linker.EdgePeaks{
		detect(ws, edge(cellY, topology.Left), 1),
		detect(ws, edge(cellY, topology.Right), 1),
	}
	assert.Empty(t, linker.ConnectMaxima(edges, unit, ws, opts...))
}

func TestConnectMaxima_Deterministic(t *testing.T) {
	ws := scene(t, wallThroughCorner())
	edges := []linker.EdgePeaks{
		detect(ws, edge(cellY, topology.Top), 1),
		detect(ws, edge(cellX, topology.Right, 2), 1),
		detect(ws, edge(cellY, topology.Left, 1), 1),
	}
	reversed := []linker.EdgePeaks{edges[2], edges[1], edges[0]}

	a := linker.ConnectMaxima(edges, unit, ws, linker.WithMinProminence(1))
	b := linker.ConnectMaxima(reversed, unit, ws, linker.WithMinProminence(1))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("segments depend on input order (-first +second):\n%s", diff)
	}
}

func TestConnectMaxima_Empty(t *testing.T) {
	assert.Nil(t, linker.ConnectMaxima(nil, unit, nil))
	assert.Nil(t, linker.ConnectMaxima([]linker.EdgePeaks{{Edge: edge(cellX, topology.Top)}}, unit, nil))
}

func TestPeakRef_Less(t *testing.T) {
	a := linker.PeakRef{Cell: 1, Side: topology.Left, Index: 3}
	b := linker.PeakRef{Cell: 1, Side: topology.Right, Index: 0}
	c := linker.PeakRef{Cell: 2, Side: topology.Top, Index: 0}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.Equal(t, "1/left/3", a.String())
}

func TestDefaultOptions(t *testing.T) {
	o := linker.DefaultOptions()
	assert.Equal(t, 1.0, o.SearchPrecision)
	assert.Equal(t, 0.05, o.MinObstacleHeight)
	assert.Equal(t, 0.1, o.MinProminence)
}
