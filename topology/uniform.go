package topology

// UniformCells covers a width×height raster with square cells of size
// pixels, numbered row-major from 1. Cells that would extend past the
// raster are left out. Returns nil when size is not positive.
// Complexity: O(width×height / size²).
func UniformCells(width, height, size int) []GridCell {
	if size <= 0 {
		return nil
	}
	var out []GridCell
	id := 1
	for y := 0; y+size <= height; y += size {
		for x := 0; x+size <= width; x += size {
			out = append(out, GridCell{ID: id, X1: x, Y1: y, X2: x + size, Y2: y + size})
			id++
		}
	}
	return out
}
