package dem

// Grid is an immutable in-memory raster. It implements Source; the
// Readers it opens share the sample slice read-only.
type Grid struct {
	width, height int
	data          []float64
	geo           GeoTransform
}

// GridOption configures NewGrid.
type GridOption func(*gridOptions)

type gridOptions struct {
	geo         GeoTransform
	noDataValue *float64
}

// WithGeoTransform sets the pixel-to-world mapping. The default is
// origin (0,0) with unit pixels.
func WithGeoTransform(g GeoTransform) GridOption {
	return func(o *gridOptions) {
		o.geo = g
	}
}

// WithNoDataValue marks samples equal to v as NoData.
func WithNoDataValue(v float64) GridOption {
	return func(o *gridOptions) {
		o.noDataValue = &v
	}
}

// NewGrid constructs a Grid from row-major samples. The input is copied.
// Returns ErrEmptyRaster, ErrDataSize or ErrPixelSize on invalid input.
// Complexity: O(W×H).
func NewGrid(width, height int, data []float64, opts ...GridOption) (*Grid, error) {
	o := gridOptions{geo: GeoTransform{PixelSize: 1}}
	for _, opt := range opts {
		opt(&o)
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyRaster
	}
	if len(data) != width*height {
		return nil, ErrDataSize
	}
	if !(o.geo.PixelSize > 0) {
		return nil, ErrPixelSize
	}
	cells := make([]float64, len(data))
	copy(cells, data)
	if o.noDataValue != nil {
		for i, v := range cells {
			if v == *o.noDataValue {
				cells[i] = NoData
			}
		}
	}

	return &Grid{width: width, height: height, data: cells, geo: o.geo}, nil
}

// FromRows builds a Grid from a rectangular [][]float64 (rows top to bottom).
func FromRows(rows [][]float64, opts ...GridOption) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyRaster
	}
	w := len(rows[0])
	data := make([]float64, 0, w*len(rows))
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrDataSize
		}
		data = append(data, row...)
	}
	return NewGrid(w, len(rows), data, opts...)
}

// Open returns a Reader over the grid. Complexity: O(1).
func (g *Grid) Open() (Reader, error) {
	return &gridReader{grid: g}, nil
}

// GeoTransform returns the pixel-to-world mapping.
func (g *Grid) GeoTransform() GeoTransform {
	return g.geo
}

// Size returns the raster dimensions in pixels.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// At returns the sample at (x,y), or NoData outside the extent.
func (g *Grid) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return NoData
	}
	return g.data[y*g.width+x]
}

type gridReader struct {
	grid   *Grid
	closed bool
}

// ReadWindow copies the requested block, padding with NoData outside the
// raster extent. Complexity: O(width×height).
func (r *gridReader) ReadWindow(xOff, yOff, width, height int) (*Window, error) {
	if width < 0 || height < 0 {
		return nil, ErrWindowSize
	}
	w := &Window{X: xOff, Y: yOff, Width: width, Height: height, Data: make([]float64, width*height)}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			w.Data[row*width+col] = r.grid.At(xOff+col, yOff+row)
		}
	}
	return w, nil
}

func (r *gridReader) Close() error {
	r.closed = true
	return nil
}
