package dem

import (
	"errors"
	"math"
)

// Sentinel errors for dem operations.
var (
	// ErrEmptyRaster indicates a raster with no rows or no columns.
	ErrEmptyRaster = errors.New("dem: raster must have at least one row and one column")
	// ErrDataSize indicates the sample slice does not match width×height.
	ErrDataSize = errors.New("dem: data length does not match raster size")
	// ErrPixelSize indicates a non-positive pixel size.
	ErrPixelSize = errors.New("dem: pixel size must be positive")
	// ErrWindowSize indicates a window with negative width or height.
	ErrWindowSize = errors.New("dem: window width and height must be non-negative")
	// ErrUnsupportedImage indicates a decoded image that is not a gray raster.
	ErrUnsupportedImage = errors.New("dem: unsupported image color model")
)

// NoData is the in-memory sentinel for a missing elevation sample.
var NoData = math.NaN()

// IsNoData reports whether v is the no-data sentinel.
func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// GeoTransform maps pixel coordinates to world coordinates.
// Pixels are square; OriginX/OriginY is the world position of the
// top-left corner of pixel (0,0).
type GeoTransform struct {
	OriginX   float64
	OriginY   float64
	PixelSize float64
}

// World converts a (fractional) pixel position to world coordinates.
// Complexity: O(1).
func (g GeoTransform) World(px, py float64) (x, y float64) {
	return g.OriginX + px*g.PixelSize, g.OriginY - py*g.PixelSize
}

// Pixel converts world coordinates to a (fractional) pixel position.
// Complexity: O(1).
func (g GeoTransform) Pixel(x, y float64) (px, py float64) {
	return (x - g.OriginX) / g.PixelSize, (g.OriginY - y) / g.PixelSize
}

// Window is a rectangular block of samples read from a raster.
// Data is row-major with Width columns; X and Y are the pixel offsets of
// the block's top-left sample in the source raster.
type Window struct {
	X, Y          int
	Width, Height int
	Data          []float64
}

// At returns the sample at (col,row) relative to the window origin,
// or NoData when outside the window.
// Complexity: O(1).
func (w *Window) At(col, row int) float64 {
	if col < 0 || row < 0 || col >= w.Width || row >= w.Height {
		return NoData
	}
	return w.Data[row*w.Width+col]
}

// Row returns a copy of row r of the window.
func (w *Window) Row(r int) []float64 {
	out := make([]float64, w.Width)
	if r < 0 || r >= w.Height {
		for i := range out {
			out[i] = NoData
		}
		return out
	}
	copy(out, w.Data[r*w.Width:(r+1)*w.Width])
	return out
}

// Column returns a copy of column c of the window, top to bottom.
func (w *Window) Column(c int) []float64 {
	out := make([]float64, w.Height)
	for r := 0; r < w.Height; r++ {
		out[r] = w.At(c, r)
	}
	return out
}

// Reader performs windowed reads against one raster handle.
// A Reader is not assumed to be safe for concurrent use.
type Reader interface {
	// ReadWindow returns the samples in [xOff, xOff+width) × [yOff, yOff+height).
	// Parts of the window outside the raster are filled with NoData.
	ReadWindow(xOff, yOff, width, height int) (*Window, error)
	// Close releases the handle.
	Close() error
}

// Source describes a raster and hands out independent Readers.
type Source interface {
	// Open returns a new Reader. Each goroutine should hold its own.
	Open() (Reader, error)
	// GeoTransform returns the pixel-to-world mapping.
	GeoTransform() GeoTransform
	// Size returns the raster dimensions in pixels.
	Size() (width, height int)
}
