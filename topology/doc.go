// Package topology models a variable-resolution computational grid of
// axis-aligned square cells laid over a DEM, and resolves the neighbors
// of every cell side across refinement levels.
//
// What:
//
//   - GridCell holds a cell's pixel bounding box and refinement level.
//   - Side enumerates the four cell sides (Top, Bottom, Left, Right).
//   - Neighbor names a bordering cell and the sub-span of the side it covers.
//   - FlowLine is the hydraulic link between two adjacent cells.
//   - Admin is the grid-administration contract; Grid is an in-memory Admin
//     that derives neighbors and flow lines from cell geometry.
//
// Refinement:
//
//	A coarse side may border several finer cells. Each Neighbor records the
//	half-open span [Start, End) it covers in the side's profile index space,
//	and Neighbors are ordered along the side (left→right, top→bottom).
//
//	    +-------+---+
//	    |       | B |   A.Right → [B{0,2}, C{2,4}]
//	    |   A   +---+   B.Left  → [A{0,2}]
//	    |       | C |   C.Left  → [A{0,2}]
//	    +-------+---+
//
// Complexity:
//
//   - NewGrid:   O(N log N + N×k), k = cells sharing a boundary line.
//   - Neighbors: O(1) after construction.
//   - Resolve:   O(R) for R requested ids.
//
// Errors:
//
//   - ErrCellNotFound: requested cell id is not in the administration.
//   - ErrFlowLineNotFound: requested flow line id is unknown.
//   - ErrInvalidCell: empty or non-square bounding box.
//   - ErrDuplicateCell: two cells share an id.
//   - ErrNotAdjacent: a supplied flow line joins cells that do not touch.
package topology
