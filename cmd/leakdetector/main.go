// Command leakdetector finds sub-grid obstacles in a DEM and writes the
// exchange level of every selected flow line.
//
// Usage:
//
//	leakdetector -dem dem.tif -gridadmin gridadmin.sqlite [-config tuning.json]
//	    [-cells 1,2,3 | -flowlines 4,5] [-out results.sqlite] [-shp segments.shp]
//
// Without -gridadmin the DEM is covered by a uniform grid of -cell-size
// pixels. The exchange-level table is written to stdout as CSV.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/threedi/leakdetector/config"
	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/detector"
	"github.com/threedi/leakdetector/gridadmin"
	"github.com/threedi/leakdetector/output"
	"github.com/threedi/leakdetector/topology"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "leakdetector: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("leakdetector", flag.ContinueOnError)
	fs.SetOutput(stderr)
	demPath := fs.String("dem", "", "Path to a single-band gray TIFF or PNG DEM (required)")
	demScale := fs.Float64("dem-scale", 1, "Elevation per raw DEM unit")
	demOffset := fs.Float64("dem-offset", 0, "Elevation of raw DEM value 0")
	demNoData := fs.Int("dem-nodata", -1, "Raw DEM value marking missing samples (-1 for none)")
	originX := fs.Float64("dem-origin-x", 0, "World X of the DEM's top-left corner")
	originY := fs.Float64("dem-origin-y", 0, "World Y of the DEM's top-left corner")
	pixelSize := fs.Float64("dem-pixel-size", 1, "DEM pixel size in world units")
	adminPath := fs.String("gridadmin", "", "Path to a grid administration sqlite file")
	cellSize := fs.Int("cell-size", 16, "Cell size in pixels for the uniform grid used without -gridadmin")
	configPath := fs.String("config", "", "Path to a tuning JSON file")
	outPath := fs.String("out", "", "Path to the results sqlite file")
	shpPath := fs.String("shp", "", "Path to the "+output.LayerName+" shapefile")
	cellsFlag := fs.String("cells", "", "Comma-separated cell ids to process")
	linesFlag := fs.String("flowlines", "", "Comma-separated flow line ids to process")
	workers := fs.Int("workers", 0, "Number of peak-finding workers (0 uses the config or all CPUs)")
	debug := fs.Bool("debug", false, "Log diagnostics and traces to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *demPath == "" {
		fs.Usage()
		return fmt.Errorf("-dem is required")
	}

	topology.SetLogWriters(stderr, nil, nil)
	detector.SetLogWriters(stderr, nil, nil)
	if *debug {
		dem.SetLogWriter(stderr)
		topology.SetLogWriters(stderr, stderr, stderr)
		detector.SetLogWriters(stderr, stderr, stderr)
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			return err
		}
	}
	if *workers > 0 {
		cfg.SetWorkers(*workers)
	}
	cellIDs, err := parseCSVIntSlice(*cellsFlag)
	if err != nil {
		return fmt.Errorf("-cells: %w", err)
	}
	lineIDs, err := parseCSVIntSlice(*linesFlag)
	if err != nil {
		return fmt.Errorf("-flowlines: %w", err)
	}
	if len(cellIDs) > 0 {
		cfg.CellIDs = cellIDs
	}
	if len(lineIDs) > 0 {
		cfg.FlowLineIDs = lineIDs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := dem.DefaultLoadOptions()
	opts.Scale, opts.Offset = *demScale, *demOffset
	opts.GeoTransform = dem.GeoTransform{OriginX: *originX, OriginY: *originY, PixelSize: *pixelSize}
	if *demNoData >= 0 {
		v := uint16(*demNoData)
		opts.NoDataRaw = &v
	}
	raster, err := dem.Load(*demPath, opts)
	if err != nil {
		return err
	}

	var grid *topology.Grid
	if *adminPath != "" {
		grid, err = gridadmin.Open(ctx, *adminPath)
	} else {
		w, h := raster.Size()
		grid, err = topology.NewGrid(topology.UniformCells(w, h, *cellSize))
	}
	if err != nil {
		return err
	}

	d, err := detector.New(grid, raster, cfg)
	if err != nil {
		return err
	}
	var res *detector.Result
	switch {
	case len(cfg.FlowLineIDs) > 0:
		res, err = d.IdentifyForFlowLines(ctx, cfg.FlowLineIDs)
	case len(cfg.CellIDs) > 0:
		res, err = d.IdentifyObstacles(ctx, cfg.CellIDs)
	default:
		res, err = d.IdentifyObstacles(ctx, grid.CellIDs())
	}
	if err != nil {
		return err
	}

	if *outPath != "" {
		store, err := output.OpenStore(*outPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveResult(ctx, res, cfg); err != nil {
			return err
		}
	}
	if *shpPath != "" {
		if err := output.WriteShapefile(*shpPath, res.Segments); err != nil {
			return err
		}
	}

	fmt.Fprintf(stderr, "run %s: %s\n", res.RunID, res.Summary())
	return writeLevels(stdout, res.ExchangeLevels)
}

// writeLevels writes the exchange-level table as CSV. Missing levels are
// written as empty fields.
func writeLevels(w io.Writer, levels []detector.ExchangeLevel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"flowline_id", "exchange_level", "obstructed", "segment_id"}); err != nil {
		return err
	}
	for _, l := range levels {
		level := ""
		if !dem.IsNoData(l.Level) {
			level = strconv.FormatFloat(l.Level, 'f', -1, 64)
		}
		segment := ""
		if l.Obstructed {
			segment = strconv.Itoa(l.Segment)
		}
		if err := cw.Write([]string{strconv.Itoa(l.FlowLine), level, strconv.FormatBool(l.Obstructed), segment}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
