// Package detector runs a leak detection over a grid administration and a
// DEM: it finds peaks on every cell edge, links them into obstacle
// segments and reduces each flow line to a single exchange level.
//
// Stages:
//
//  1. Peak finding, in parallel. Each worker holds its own dem.Reader and
//     pulls cells from a shared queue; windows and profiles are cached in
//     a per-run profile.Extractor.
//  2. Linking, single-threaded, over the full peak set (linker.ConnectMaxima).
//  3. Exchange levels: a flow line crossed by a segment takes the highest
//     crossing crest; otherwise the highest valid sample along its shared
//     boundary.
//
// The selection is widened by one ring of neighbors before stage 1 so
// that peaks on the outside of the selection rim are available to the
// linker. Only segments touching a selected cell are reported.
//
// Cancellation is checked between cells. A cancelled run returns the
// context error and no partial result.
package detector

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/threedi/leakdetector/config"
	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/linker"
	"github.com/threedi/leakdetector/peaks"
	"github.com/threedi/leakdetector/profile"
	"github.com/threedi/leakdetector/topology"
)

// Detector holds the collaborators and thresholds of detection runs.
// A Detector may run several detections concurrently; each run owns its
// caches.
type Detector struct {
	admin  topology.Admin
	source dem.Source
	cfg    *config.TuningConfig
}

// New returns a Detector. A nil cfg uses the built-in defaults.
// Returns ErrNilSource when admin or source is nil, or the cfg
// validation error.
func New(admin topology.Admin, source dem.Source, cfg *config.TuningConfig) (*Detector, error) {
	if admin == nil || source == nil {
		return nil, ErrNilSource
	}
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{admin: admin, source: source, cfg: cfg}, nil
}

// IdentifyObstacles detects obstacles for cellIDs and computes the
// exchange level of every flow line touching them. Unknown ids are
// reported in Result.Skipped.
func (d *Detector) IdentifyObstacles(ctx context.Context, cellIDs []int) (*Result, error) {
	selected := uniqueSorted(cellIDs)
	seen := make(map[int]bool)
	var lines []topology.FlowLine
	for _, id := range selected {
		for _, fl := range d.admin.FlowLinesOf(id) {
			if !seen[fl.ID] {
				seen[fl.ID] = true
				lines = append(lines, fl)
			}
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return d.run(ctx, selected, lines)
}

// IdentifyForFlowLines detects obstacles for the cells on both sides of
// each flow line and computes the exchange levels of those flow lines.
// Unknown ids are reported in Result.SkippedFlowLines.
func (d *Detector) IdentifyForFlowLines(ctx context.Context, flowLineIDs []int) (*Result, error) {
	cells, lines, skipped := topology.CellsForFlowLines(d.admin, flowLineIDs)
	res, err := d.run(ctx, cells, lines)
	if err != nil {
		return nil, err
	}
	res.SkippedFlowLines = skipped
	return res, nil
}

func (d *Detector) run(ctx context.Context, selected []int, lines []topology.FlowLine) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.New()}

	resolved, skipped := topology.Resolve(d.admin, topology.WithNeighbors(d.admin, selected))
	res.Skipped = skipped

	ex := profile.NewExtractor()
	found, err := d.findPeaks(ctx, ex, resolved)
	if err != nil {
		return nil, err
	}

	all := linker.ConnectMaxima(found, d.source.GeoTransform(), ex,
		linker.WithSearchPrecision(d.cfg.GetSearchPrecision()),
		linker.WithMinProminence(d.cfg.GetMinPeakProminence()),
		linker.WithMinObstacleHeight(d.cfg.GetMinObstacleHeight()),
	)
	segs := touching(all, selected)

	levels, crossed := d.exchangeLevels(ex, segs, lines)
	for _, s := range segs {
		res.Segments = append(res.Segments, Segment{ObstacleSegment: s, FlowLines: crossed[s.ID]})
	}
	res.ExchangeLevels = levels

	opsf("run %s: %d cells read (%d windows), %s", res.RunID, len(resolved), ex.Reads(), res.Summary())
	return res, nil
}

// findPeaks runs stage 1 over cells and returns the edges with at least
// one peak, in cell order.
func (d *Detector) findPeaks(ctx context.Context, ex *profile.Extractor, cells []topology.Resolved) ([]linker.EdgePeaks, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	opts := peaks.Options{
		MinProminence:     d.cfg.GetMinPeakProminence(),
		FlatnessTolerance: d.cfg.GetFlatnessTolerance(),
	}
	perCell := make([][]linker.EdgePeaks, len(cells))

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range cells {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(d.cfg.GetWorkers(), len(cells))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r, err := d.source.Open()
			if err != nil {
				return fmt.Errorf("open dem reader: %w", err)
			}
			defer r.Close()
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				eps, err := cellPeaks(ex, r, cells[i], opts)
				if err != nil {
					return err
				}
				perCell[i] = eps
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []linker.EdgePeaks
	for _, eps := range perCell {
		out = append(out, eps...)
	}
	return out, nil
}

// cellPeaks extracts the profile of every side of c that has a neighbor
// and finds its peaks.
func cellPeaks(ex *profile.Extractor, r dem.Reader, c topology.Resolved, opts peaks.Options) ([]linker.EdgePeaks, error) {
	var out []linker.EdgePeaks
	total := 0
	for _, s := range topology.Sides {
		e := c.Edge(s)
		p, err := ex.Edge(r, e)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		found := peaks.FindMaxima(p, opts)
		if len(found) == 0 {
			continue
		}
		out = append(out, linker.EdgePeaks{Edge: e, Peaks: found})
		total += len(found)
	}
	tracef("cell %d: %d peaks on %d edges", c.Cell.ID, total, len(out))
	return out, nil
}

// touching keeps the segments that touch a selected cell and renumbers
// them from 1, preserving order.
func touching(segs []linker.ObstacleSegment, selected []int) []linker.ObstacleSegment {
	want := make(map[int]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	var out []linker.ObstacleSegment
	for _, s := range segs {
		for _, c := range s.Cells {
			if want[c] {
				out = append(out, s)
				break
			}
		}
	}
	for i := range out {
		out[i].ID = i + 1
	}
	return out
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
