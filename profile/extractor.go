package profile

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/topology"
)

type edgeKey struct {
	cell int
	side topology.Side
}

// Extractor reads one DEM window per cell and one profile per (cell, side),
// and keeps both for the lifetime of a detection run. It is safe for
// concurrent use; concurrent requests for the same cell window are
// collapsed into a single read.
type Extractor struct {
	group    singleflight.Group
	mu       sync.RWMutex
	windows  map[int]*dem.Window
	profiles map[edgeKey]Profile
	reads    atomic.Int64
}

// NewExtractor returns an empty per-run cache.
func NewExtractor() *Extractor {
	return &Extractor{
		windows:  make(map[int]*dem.Window),
		profiles: make(map[edgeKey]Profile),
	}
}

// Window returns the DEM window covering cell, reading it through r on
// the first request only.
func (e *Extractor) Window(r dem.Reader, cell topology.GridCell) (*dem.Window, error) {
	e.mu.RLock()
	w, ok := e.windows[cell.ID]
	e.mu.RUnlock()
	if ok {
		return w, nil
	}

	v, err, _ := e.group.Do(strconv.Itoa(cell.ID), func() (interface{}, error) {
		e.mu.RLock()
		w, ok := e.windows[cell.ID]
		e.mu.RUnlock()
		if ok {
			return w, nil
		}
		w, err := r.ReadWindow(cell.X1, cell.Y1, cell.Size(), cell.Size())
		if err != nil {
			return nil, fmt.Errorf("read window for cell %d: %w", cell.ID, err)
		}
		e.reads.Add(1)
		e.mu.Lock()
		e.windows[cell.ID] = w
		e.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dem.Window), nil
}

// Edge returns the profile along edge. Sides without neighbors yield a
// nil profile and no read.
func (e *Extractor) Edge(r dem.Reader, edge topology.Edge) (Profile, error) {
	if !edge.HasNeighbors() {
		return nil, nil
	}
	k := edgeKey{cell: edge.Cell.ID, side: edge.Side}
	e.mu.RLock()
	p, ok := e.profiles[k]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}
	w, err := e.Window(r, edge.Cell)
	if err != nil {
		return nil, err
	}
	p = EdgePixels(w, edge.Cell, edge.Side)
	e.mu.Lock()
	e.profiles[k] = p
	e.mu.Unlock()
	return p, nil
}

// CachedWindow returns a previously read window.
func (e *Extractor) CachedWindow(cellID int) (*dem.Window, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.windows[cellID]
	return w, ok
}

// Cached returns a previously extracted profile.
func (e *Extractor) Cached(cellID int, side topology.Side) (Profile, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.profiles[edgeKey{cell: cellID, side: side}]
	return p, ok
}

// Reads returns the number of raster windows read so far.
func (e *Extractor) Reads() int64 {
	return e.reads.Load()
}
