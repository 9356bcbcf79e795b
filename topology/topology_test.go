package topology_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedi/leakdetector/topology"
)

// refinedGrid builds one coarse cell with two finer cells on its right
// and one coarse cell below it:
//
//	+-------+---+
//	|       | 2 |
//	|   1   +---+
//	|       | 3 |
//	+-------+---+
//	|       |
//	|   4   |
//	|       |
//	+-------+
func refinedGrid(t *testing.T, opts ...topology.Option) *topology.Grid {
	t.Helper()
	g, err := topology.NewGrid([]topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 4, Y2: 4, Level: 0},
		{ID: 2, X1: 4, Y1: 0, X2: 6, Y2: 2, Level: 1},
		{ID: 3, X1: 4, Y1: 2, X2: 6, Y2: 4, Level: 1},
		{ID: 4, X1: 0, Y1: 4, X2: 4, Y2: 8, Level: 0},
	}, opts...)
	require.NoError(t, err)
	return g
}

func TestSide_Opposite(t *testing.T) {
	cases := map[topology.Side]topology.Side{
		topology.Top:    topology.Bottom,
		topology.Bottom: topology.Top,
		topology.Left:   topology.Right,
		topology.Right:  topology.Left,
	}
	for s, want := range cases {
		assert.Equal(t, want, s.Opposite(), "opposite of %s", s)
		assert.Equal(t, s, s.Opposite().Opposite())
	}
	assert.Equal(t, "right", topology.Right.String())
	assert.True(t, topology.Top.Horizontal())
	assert.False(t, topology.Left.Horizontal())
}

func TestNewGrid_NeighborsAcrossRefinement(t *testing.T) {
	g := refinedGrid(t)

	right, err := g.Neighbors(1, topology.Right)
	require.NoError(t, err)
	assert.Equal(t, []topology.Neighbor{
		{CellID: 2, Start: 0, End: 2},
		{CellID: 3, Start: 2, End: 4},
	}, right)

	left, err := g.Neighbors(3, topology.Left)
	require.NoError(t, err)
	assert.Equal(t, []topology.Neighbor{{CellID: 1, Start: 0, End: 2}}, left)

	below, err := g.Neighbors(2, topology.Bottom)
	require.NoError(t, err)
	assert.Equal(t, []topology.Neighbor{{CellID: 3, Start: 0, End: 2}}, below)

	top, err := g.Neighbors(1, topology.Top)
	require.NoError(t, err)
	assert.Empty(t, top, "grid boundary has no neighbors")

	bottom, err := g.Neighbors(1, topology.Bottom)
	require.NoError(t, err)
	assert.Equal(t, []topology.Neighbor{{CellID: 4, Start: 0, End: 4}}, bottom)

	_, err = g.Neighbors(99, topology.Top)
	assert.ErrorIs(t, err, topology.ErrCellNotFound)
}

func TestNewGrid_DerivedFlowLines(t *testing.T) {
	g := refinedGrid(t)
	assert.Equal(t, []topology.FlowLine{
		{ID: 1, From: 1, To: 2, Side: topology.Right},
		{ID: 2, From: 1, To: 3, Side: topology.Right},
		{ID: 3, From: 1, To: 4, Side: topology.Bottom},
		{ID: 4, From: 2, To: 3, Side: topology.Bottom},
	}, g.FlowLines())

	of3 := g.FlowLinesOf(3)
	require.Len(t, of3, 2)
	assert.Equal(t, 2, of3[0].ID)
	assert.Equal(t, 4, of3[1].ID)

	_, err := g.FlowLine(42)
	assert.ErrorIs(t, err, topology.ErrFlowLineNotFound)
}

func TestNewGrid_ExplicitFlowLinesAreOriented(t *testing.T) {
	g := refinedGrid(t, topology.WithFlowLines([]topology.FlowLine{
		{ID: 10, From: 3, To: 1},
		{ID: 7, From: 4, To: 1},
	}))
	lines := g.FlowLines()
	require.Len(t, lines, 2)
	assert.Equal(t, topology.FlowLine{ID: 7, From: 1, To: 4, Side: topology.Bottom}, lines[0])
	assert.Equal(t, topology.FlowLine{ID: 10, From: 1, To: 3, Side: topology.Right}, lines[1])

	_, err := topology.NewGrid([]topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 4, Y2: 4},
		{ID: 2, X1: 8, Y1: 0, X2: 12, Y2: 4},
	}, topology.WithFlowLines([]topology.FlowLine{{ID: 1, From: 1, To: 2}}))
	assert.ErrorIs(t, err, topology.ErrNotAdjacent)

	_, err = topology.NewGrid([]topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 4, Y2: 4},
	}, topology.WithFlowLines([]topology.FlowLine{{ID: 1, From: 1, To: 5}}))
	assert.ErrorIs(t, err, topology.ErrCellNotFound)
}

func TestNewGrid_Validation(t *testing.T) {
	_, err := topology.NewGrid([]topology.GridCell{{ID: 1, X1: 0, Y1: 0, X2: 2, Y2: 3}})
	assert.ErrorIs(t, err, topology.ErrInvalidCell)

	_, err = topology.NewGrid([]topology.GridCell{{ID: 1, X1: 2, Y1: 2, X2: 2, Y2: 2}})
	assert.ErrorIs(t, err, topology.ErrInvalidCell)

	_, err = topology.NewGrid([]topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 2, Y2: 2},
		{ID: 1, X1: 2, Y1: 0, X2: 4, Y2: 2},
	})
	assert.ErrorIs(t, err, topology.ErrDuplicateCell)
}

// TestNewGrid_OverlappingSpansAreTrimmed feeds an inconsistent
// administration where two right-hand neighbors overlap; the later span is
// trimmed instead of aborting, and the trim is logged.
func TestNewGrid_OverlappingSpansAreTrimmed(t *testing.T) {
	var diag bytes.Buffer
	topology.SetLogWriters(nil, &diag, nil)
	defer topology.SetLogWriters(nil, nil, nil)

	g, err := topology.NewGrid([]topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 4, Y2: 4},
		{ID: 2, X1: 4, Y1: 0, X2: 6, Y2: 2},
		{ID: 3, X1: 4, Y1: 1, X2: 6, Y2: 3},
	})
	require.NoError(t, err)
	right, err := g.Neighbors(1, topology.Right)
	require.NoError(t, err)
	assert.Equal(t, []topology.Neighbor{
		{CellID: 2, Start: 0, End: 2},
		{CellID: 3, Start: 2, End: 3},
	}, right)
	assert.Contains(t, diag.String(), "overlaps previous span")
}

func TestResolve_SkipsMissingCells(t *testing.T) {
	var ops bytes.Buffer
	topology.SetLogWriters(&ops, nil, nil)
	defer topology.SetLogWriters(nil, nil, nil)

	g := refinedGrid(t)
	resolved, skipped := topology.Resolve(g, []int{3, 99, 1, 1})
	require.Len(t, resolved, 2)
	assert.Equal(t, 1, resolved[0].Cell.ID)
	assert.Equal(t, 3, resolved[1].Cell.ID)
	assert.Equal(t, []int{99}, skipped)
	assert.Contains(t, ops.String(), "skipping cell 99")

	e := resolved[0].Edge(topology.Right)
	assert.Equal(t, topology.Right, e.Side)
	assert.Equal(t, 4, e.Len())
	assert.True(t, e.HasNeighbors())
	assert.False(t, resolved[0].Edge(topology.Left).HasNeighbors())
}

func TestWithNeighbors(t *testing.T) {
	g := refinedGrid(t)
	assert.Equal(t, []int{1, 2, 3}, topology.WithNeighbors(g, []int{2}))
	assert.Equal(t, []int{1, 2, 3, 4, 77}, topology.WithNeighbors(g, []int{1, 77}))
}

func TestCellsForFlowLines(t *testing.T) {
	g := refinedGrid(t)
	cells, lines, skipped := topology.CellsForFlowLines(g, []int{4, 42, 4})
	assert.Equal(t, []int{2, 3}, cells)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].ID)
	assert.Equal(t, []int{42}, skipped)
}

func TestSharedBoundary(t *testing.T) {
	g := refinedGrid(t)
	fl, err := g.FlowLine(2)
	require.NoError(t, err)

	from, to, err := topology.SharedBoundary(g, fl)
	require.NoError(t, err)
	assert.Equal(t, topology.Neighbor{CellID: 3, Start: 2, End: 4}, from)
	assert.Equal(t, topology.Neighbor{CellID: 1, Start: 0, End: 2}, to)

	_, _, err = topology.SharedBoundary(g, topology.FlowLine{ID: 9, From: 2, To: 4, Side: topology.Bottom})
	assert.ErrorIs(t, err, topology.ErrNotAdjacent)
}

func TestUniformCells(t *testing.T) {
	cells := topology.UniformCells(25, 10, 10)
	assert.Equal(t, []topology.GridCell{
		{ID: 1, X1: 0, Y1: 0, X2: 10, Y2: 10},
		{ID: 2, X1: 10, Y1: 0, X2: 20, Y2: 10},
	}, cells)
	assert.Nil(t, topology.UniformCells(25, 10, 0))

	g, err := topology.NewGrid(topology.UniformCells(30, 30, 10))
	require.NoError(t, err)
	assert.Len(t, g.FlowLines(), 12)
}
