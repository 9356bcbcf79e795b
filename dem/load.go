package dem

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // Register PNG format decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// LoadOptions controls how raw image samples become elevations:
// elevation = raw×Scale + Offset. Raw samples equal to NoDataRaw are
// mapped to NoData before scaling.
type LoadOptions struct {
	Scale        float64
	Offset       float64
	NoDataRaw    *uint16
	GeoTransform GeoTransform
}

// DefaultLoadOptions returns Scale=1, Offset=0, no no-data value and a
// unit-pixel geotransform at the origin.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Scale:        1,
		GeoTransform: GeoTransform{PixelSize: 1},
	}
}

// Load decodes a single-band gray TIFF or PNG into an in-memory Grid.
// 16-bit and 8-bit gray models are accepted; anything else yields
// ErrUnsupportedImage.
func Load(path string, opts LoadOptions) (*Grid, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open DEM: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode DEM %q: %w", path, err)
	}
	diagf("decoded %s DEM %q bounds=%v", format, path, img.Bounds())

	return FromImage(img, opts)
}

// FromImage converts a decoded gray image into a Grid.
// Complexity: O(W×H).
func FromImage(img image.Image, opts LoadOptions) (*Grid, error) {
	switch img.ColorModel() {
	case color.Gray16Model, color.GrayModel:
	default:
		return nil, ErrUnsupportedImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyRaster
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	eightBit := img.ColorModel() == color.GrayModel
	data := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var raw uint16
			if eightBit {
				raw = uint16(color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y)
			} else {
				raw = color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16).Y
			}
			if opts.NoDataRaw != nil && raw == *opts.NoDataRaw {
				data[y*w+x] = NoData
				continue
			}
			data[y*w+x] = float64(raw)*scale + opts.Offset
		}
	}
	geo := opts.GeoTransform
	if geo.PixelSize == 0 {
		geo.PixelSize = 1
	}

	return NewGrid(w, h, data, WithGeoTransform(geo))
}
