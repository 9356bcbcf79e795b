package topology

import (
	"errors"
	"fmt"
	"sort"
)

// Resolved is a cell together with its four edges.
type Resolved struct {
	Cell  GridCell
	Edges [4]Edge
}

// Edge returns the edge of the resolved cell on side s.
func (r Resolved) Edge(s Side) Edge {
	return r.Edges[s]
}

// ResolveCell looks up a cell and the neighbors on each of its sides.
// Returns ErrCellNotFound (wrapped) when the id is unknown.
func ResolveCell(admin Admin, id int) (Resolved, error) {
	c, err := admin.Cell(id)
	if err != nil {
		return Resolved{}, err
	}
	r := Resolved{Cell: c}
	for _, s := range Sides {
		ns, err := admin.Neighbors(id, s)
		if err != nil {
			return Resolved{}, fmt.Errorf("cell %d %s: %w", id, s, err)
		}
		r.Edges[s] = Edge{Cell: c, Side: s, Neighbors: ns}
	}
	return r, nil
}

// Resolve resolves every id in ids. Unknown ids are skipped and returned
// in skipped; the remaining cells are returned in ascending id order.
// Duplicate ids are resolved once.
// Complexity: O(R log R).
func Resolve(admin Admin, ids []int) (resolved []Resolved, skipped []int) {
	for _, id := range uniqueSorted(ids) {
		r, err := ResolveCell(admin, id)
		if err != nil {
			if errors.Is(err, ErrCellNotFound) {
				opsf("skipping cell %d: %v", id, err)
			} else {
				opsf("skipping cell %d: unexpected error: %v", id, err)
			}
			skipped = append(skipped, id)
			continue
		}
		resolved = append(resolved, r)
	}
	return resolved, skipped
}

// WithNeighbors returns ids extended by every cell bordering one of them,
// deduplicated and sorted. Unknown ids are kept so that callers can report
// them as skipped.
func WithNeighbors(admin Admin, ids []int) []int {
	out := append([]int(nil), ids...)
	for _, id := range uniqueSorted(ids) {
		for _, s := range Sides {
			ns, err := admin.Neighbors(id, s)
			if err != nil {
				break
			}
			for _, n := range ns {
				out = append(out, n.CellID)
			}
		}
	}
	return uniqueSorted(out)
}

// CellsForFlowLines returns the cells touched by the selected flow lines,
// the flow lines themselves (ordered by id) and the unknown flow line ids.
func CellsForFlowLines(admin Admin, ids []int) (cells []int, lines []FlowLine, skipped []int) {
	for _, id := range uniqueSorted(ids) {
		fl, err := admin.FlowLine(id)
		if err != nil {
			opsf("skipping flow line %d: %v", id, err)
			skipped = append(skipped, id)
			continue
		}
		lines = append(lines, fl)
		cells = append(cells, fl.From, fl.To)
	}
	return uniqueSorted(cells), lines, skipped
}

// SharedBoundary returns the span of From's side covered by To and the
// span of To's opposite side covered by From.
func SharedBoundary(admin Admin, fl FlowLine) (from, to Neighbor, err error) {
	fromNs, err := admin.Neighbors(fl.From, fl.Side)
	if err != nil {
		return Neighbor{}, Neighbor{}, err
	}
	toNs, err := admin.Neighbors(fl.To, fl.Side.Opposite())
	if err != nil {
		return Neighbor{}, Neighbor{}, err
	}
	var okFrom, okTo bool
	for _, n := range fromNs {
		if n.CellID == fl.To {
			from, okFrom = n, true
			break
		}
	}
	for _, n := range toNs {
		if n.CellID == fl.From {
			to, okTo = n, true
			break
		}
	}
	if !okFrom || !okTo {
		return Neighbor{}, Neighbor{}, fmt.Errorf("flow line %d: %w", fl.ID, ErrNotAdjacent)
	}
	return from, to, nil
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
