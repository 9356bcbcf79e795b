package topology

import (
	"errors"
	"fmt"
)

// Sentinel errors for topology operations.
var (
	// ErrCellNotFound indicates a requested cell id is absent.
	ErrCellNotFound = errors.New("topology: cell not found")
	// ErrFlowLineNotFound indicates a requested flow line id is absent.
	ErrFlowLineNotFound = errors.New("topology: flow line not found")
	// ErrInvalidCell indicates an empty or non-square cell bounding box.
	ErrInvalidCell = errors.New("topology: cell bounding box must be a non-empty square")
	// ErrDuplicateCell indicates two cells with the same id.
	ErrDuplicateCell = errors.New("topology: duplicate cell id")
	// ErrNotAdjacent indicates a flow line between cells that share no side.
	ErrNotAdjacent = errors.New("topology: flow line cells are not adjacent")
)

// Side identifies one of the four sides of a cell.
type Side int

const (
	// Top is the first pixel row of the cell.
	Top Side = iota
	// Bottom is the last pixel row of the cell.
	Bottom
	// Left is the first pixel column of the cell.
	Left
	// Right is the last pixel column of the cell.
	Right
)

// Sides lists all sides in index order.
var Sides = [4]Side{Top, Bottom, Left, Right}

// Opposite returns the side facing s across a shared boundary.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Horizontal reports whether the side runs along a pixel row.
func (s Side) Horizontal() bool {
	return s == Top || s == Bottom
}

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// GridCell is a computational cell. The bounding box is half-open in DEM
// pixel coordinates: columns [X1, X2), rows [Y1, Y2).
type GridCell struct {
	ID     int
	X1, Y1 int
	X2, Y2 int
	Level  int
}

// Size returns the side length in pixels.
func (c GridCell) Size() int {
	return c.X2 - c.X1
}

// Center returns the cell centre in (fractional) pixel coordinates.
func (c GridCell) Center() (px, py float64) {
	return float64(c.X1+c.X2) / 2, float64(c.Y1+c.Y2) / 2
}

func (c GridCell) valid() bool {
	return c.X2 > c.X1 && c.Y2 > c.Y1 && c.X2-c.X1 == c.Y2-c.Y1
}

// Neighbor is a cell bordering a side, together with the half-open span
// [Start, End) of the side's profile that it covers.
type Neighbor struct {
	CellID     int
	Start, End int
}

// Len returns the number of profile samples covered by the neighbor.
func (n Neighbor) Len() int {
	return n.End - n.Start
}

// Edge is the boundary of one cell on one side.
type Edge struct {
	Cell      GridCell
	Side      Side
	Neighbors []Neighbor
}

// Len returns the edge length in pixels.
func (e Edge) Len() int {
	return e.Cell.Size()
}

// HasNeighbors reports whether the side borders at least one cell.
func (e Edge) HasNeighbors() bool {
	return len(e.Neighbors) > 0
}

// FlowLine links two adjacent cells. From's Side borders To, and Side is
// always Right or Bottom.
type FlowLine struct {
	ID   int
	From int
	To   int
	Side Side
}

// Admin is the grid administration: cell geometry, per-side neighbors and
// flow lines.
type Admin interface {
	// Cell returns the cell with the given id or ErrCellNotFound.
	Cell(id int) (GridCell, error)
	// Neighbors returns the cells bordering side of cell id, ordered along
	// the side, or ErrCellNotFound.
	Neighbors(id int, side Side) ([]Neighbor, error)
	// FlowLine returns the flow line with the given id or ErrFlowLineNotFound.
	FlowLine(id int) (FlowLine, error)
	// FlowLines returns all flow lines ordered by id.
	FlowLines() []FlowLine
	// FlowLinesOf returns the flow lines touching cell id, ordered by id.
	FlowLinesOf(id int) []FlowLine
}
