// Package dem provides read-only access to a digital elevation model
// (DEM) raster through windowed reads.
//
// What:
//
//   - Source describes a raster (size, geotransform) and opens Readers.
//   - Reader performs windowed reads; every worker should Open its own.
//   - Grid is an in-memory Source backed by a row-major []float64.
//   - Load decodes a single-band 16-bit (or 8-bit) gray TIFF/PNG into a Grid,
//     applying scale, offset and a no-data value.
//
// No-data:
//
//	Missing samples are represented by NoData (NaN). Use IsNoData to test.
//	Windows that extend beyond the raster extent are padded with NoData
//	rather than failing.
//
// Coordinates:
//
//	Pixel (0,0) is the top-left pixel. GeoTransform maps pixel corners to
//	world coordinates: x grows with column, y decreases with row.
//
// Errors:
//
//   - ErrEmptyRaster: width or height is zero.
//   - ErrDataSize: data length does not equal width×height.
//   - ErrPixelSize: pixel size is not strictly positive.
//   - ErrWindowSize: negative window width or height.
//   - ErrUnsupportedImage: decoded image is not a gray raster.
package dem
