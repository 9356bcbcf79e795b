package topology

import (
	"fmt"
	"sort"
)

// Grid is an in-memory Admin. It is immutable once built and safe for
// concurrent reads.
type Grid struct {
	cells     map[int]GridCell
	ids       []int
	neighbors map[int]*[4][]Neighbor
	lines     []FlowLine
	lineIndex map[int]int
	linesOf   map[int][]int
}

// Option configures NewGrid.
type Option func(*gridOptions)

type gridOptions struct {
	lines []FlowLine
}

// WithFlowLines supplies flow line ids from an external administration
// instead of numbering them. From/To may be given in either order; the
// Grid orients each line so that From's Right or Bottom side borders To.
func WithFlowLines(lines []FlowLine) Option {
	return func(o *gridOptions) {
		o.lines = append([]FlowLine(nil), lines...)
	}
}

// NewGrid indexes cells and derives per-side neighbors and flow lines.
// Cells must be non-empty squares with unique ids.
// Complexity: O(N log N + N×k), k = cells sharing a boundary line.
func NewGrid(cells []GridCell, opts ...Option) (*Grid, error) {
	var o gridOptions
	for _, opt := range opts {
		opt(&o)
	}
	g := &Grid{
		cells:     make(map[int]GridCell, len(cells)),
		ids:       make([]int, 0, len(cells)),
		neighbors: make(map[int]*[4][]Neighbor, len(cells)),
		lineIndex: make(map[int]int),
		linesOf:   make(map[int][]int),
	}
	for _, c := range cells {
		if !c.valid() {
			return nil, fmt.Errorf("%w: cell %d (%d,%d)-(%d,%d)", ErrInvalidCell, c.ID, c.X1, c.Y1, c.X2, c.Y2)
		}
		if _, dup := g.cells[c.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCell, c.ID)
		}
		g.cells[c.ID] = c
		g.ids = append(g.ids, c.ID)
	}
	sort.Ints(g.ids)

	// Index cells by the boundary line each side lies on.
	byX1 := make(map[int][]GridCell)
	byX2 := make(map[int][]GridCell)
	byY1 := make(map[int][]GridCell)
	byY2 := make(map[int][]GridCell)
	for _, id := range g.ids {
		c := g.cells[id]
		byX1[c.X1] = append(byX1[c.X1], c)
		byX2[c.X2] = append(byX2[c.X2], c)
		byY1[c.Y1] = append(byY1[c.Y1], c)
		byY2[c.Y2] = append(byY2[c.Y2], c)
	}
	for _, id := range g.ids {
		c := g.cells[id]
		var sides [4][]Neighbor
		sides[Top] = spans(c, Top, byY2[c.Y1])
		sides[Bottom] = spans(c, Bottom, byY1[c.Y2])
		sides[Left] = spans(c, Left, byX2[c.X1])
		sides[Right] = spans(c, Right, byX1[c.X2])
		g.neighbors[id] = &sides
	}

	if err := g.buildFlowLines(o.lines); err != nil {
		return nil, err
	}

	return g, nil
}

// spans computes the neighbors of c on side from the candidates lying on
// the facing boundary line, ordered along the side.
func spans(c GridCell, side Side, candidates []GridCell) []Neighbor {
	var out []Neighbor
	for _, b := range candidates {
		if b.ID == c.ID {
			continue
		}
		var lo, hi, base int
		if side.Horizontal() {
			lo, hi, base = max(c.X1, b.X1), min(c.X2, b.X2), c.X1
		} else {
			lo, hi, base = max(c.Y1, b.Y1), min(c.Y2, b.Y2), c.Y1
		}
		if hi <= lo {
			continue
		}
		out = append(out, Neighbor{CellID: b.ID, Start: lo - base, End: hi - base})
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].CellID < out[j].CellID
	})

	return reconcile(c, side, out)
}

// reconcile trims overlapping neighbor spans so that they tile the side
// without double coverage, keeping the earliest span intact. Gaps and
// count mismatches against the refinement levels are logged, not fatal.
func reconcile(c GridCell, side Side, ns []Neighbor) []Neighbor {
	out := ns[:0]
	covered, end := 0, 0
	for _, n := range ns {
		if n.Start < end {
			diagf("cell %d %s: neighbor %d overlaps previous span [%d,%d), trimming", c.ID, side, n.CellID, n.Start, end)
			n.Start = end
		}
		if n.Len() <= 0 {
			continue
		}
		out = append(out, n)
		covered += n.Len()
		end = n.End
	}
	if covered != c.Size() {
		tracef("cell %d %s: neighbors cover %d of %d samples", c.ID, side, covered, c.Size())
	}
	return out
}

func (g *Grid) buildFlowLines(explicit []FlowLine) error {
	if len(explicit) == 0 {
		for _, id := range g.ids {
			for _, side := range []Side{Right, Bottom} {
				for _, n := range g.neighbors[id][side] {
					g.lines = append(g.lines, FlowLine{From: id, To: n.CellID, Side: side})
				}
			}
		}
		sort.Slice(g.lines, func(i, j int) bool {
			if g.lines[i].From != g.lines[j].From {
				return g.lines[i].From < g.lines[j].From
			}
			return g.lines[i].To < g.lines[j].To
		})
		for i := range g.lines {
			g.lines[i].ID = i + 1
		}
	} else {
		for _, fl := range explicit {
			oriented, err := g.orient(fl)
			if err != nil {
				return err
			}
			g.lines = append(g.lines, oriented)
		}
		sort.Slice(g.lines, func(i, j int) bool { return g.lines[i].ID < g.lines[j].ID })
	}
	for i, fl := range g.lines {
		g.lineIndex[fl.ID] = i
		g.linesOf[fl.From] = append(g.linesOf[fl.From], i)
		g.linesOf[fl.To] = append(g.linesOf[fl.To], i)
	}
	return nil
}

// orient returns fl with From/To swapped if needed so that From's Right or
// Bottom side borders To.
func (g *Grid) orient(fl FlowLine) (FlowLine, error) {
	for _, id := range []int{fl.From, fl.To} {
		if _, ok := g.cells[id]; !ok {
			return FlowLine{}, fmt.Errorf("flow line %d: %w: %d", fl.ID, ErrCellNotFound, id)
		}
	}
	for _, side := range []Side{Right, Bottom} {
		if borders(g.neighbors[fl.From][side], fl.To) {
			return FlowLine{ID: fl.ID, From: fl.From, To: fl.To, Side: side}, nil
		}
		if borders(g.neighbors[fl.To][side], fl.From) {
			return FlowLine{ID: fl.ID, From: fl.To, To: fl.From, Side: side}, nil
		}
	}
	return FlowLine{}, fmt.Errorf("flow line %d (%d-%d): %w", fl.ID, fl.From, fl.To, ErrNotAdjacent)
}

func borders(ns []Neighbor, id int) bool {
	for _, n := range ns {
		if n.CellID == id {
			return true
		}
	}
	return false
}

// Cell returns the cell with the given id. Complexity: O(1).
func (g *Grid) Cell(id int) (GridCell, error) {
	c, ok := g.cells[id]
	if !ok {
		return GridCell{}, fmt.Errorf("%w: %d", ErrCellNotFound, id)
	}
	return c, nil
}

// Neighbors returns a copy of the neighbors on side of cell id.
// Complexity: O(k).
func (g *Grid) Neighbors(id int, side Side) ([]Neighbor, error) {
	sides, ok := g.neighbors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCellNotFound, id)
	}
	return append([]Neighbor(nil), sides[side]...), nil
}

// FlowLine returns the flow line with the given id. Complexity: O(1).
func (g *Grid) FlowLine(id int) (FlowLine, error) {
	i, ok := g.lineIndex[id]
	if !ok {
		return FlowLine{}, fmt.Errorf("%w: %d", ErrFlowLineNotFound, id)
	}
	return g.lines[i], nil
}

// FlowLines returns all flow lines ordered by id.
func (g *Grid) FlowLines() []FlowLine {
	return append([]FlowLine(nil), g.lines...)
}

// FlowLinesOf returns the flow lines touching cell id, ordered by id.
func (g *Grid) FlowLinesOf(id int) []FlowLine {
	idx := g.linesOf[id]
	out := make([]FlowLine, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.lines[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CellIDs returns all cell ids in ascending order.
func (g *Grid) CellIDs() []int {
	return append([]int(nil), g.ids...)
}
