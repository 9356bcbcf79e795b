// Package leakdetector finds sub-grid obstacles (walls, embankments,
// dikes) in a fine DEM and reduces them to one exchange level per flow
// line of a coarse, variable-resolution computational grid.
//
// What is in the box?
//
//	dem/        in-memory rasters, windowed readers, TIFF/PNG loading
//	topology/   grid cells, per-side neighbors across refinement levels, flow lines
//	profile/    edge profiles along cell boundaries and a per-run window cache
//	peaks/      prominence-based plateau detection on a profile
//	linker/     R-tree candidate search and disjoint-set merging into obstacle segments
//	detector/   the parallel detection run and exchange-level computation
//	config/     JSON tuning parameters
//	gridadmin/  sqlite grid administration reader and writer
//	output/     sqlite results store and the obstacle segment shapefile
//
// Data flow:
//
//	topology.Resolve → profile.Extractor → peaks.FindMaxima
//	    → linker.ConnectMaxima → detector exchange levels → output
//
// The cmd/leakdetector binary wires these together.
package leakdetector
